// Copyright 2025 Brian Wang <wangbuke@gmail.com>
// SPDX-License-Identifier: Apache-2.0

package van

import (
	"fmt"
	"strings"
)

// ParseBlocks splits a component source into its template/script/style
// blocks (spec.md §4.1). It is infallible for empty input and tolerant of
// malformed individual blocks; it only returns an error for duplicate prop
// names or unbalanced outer block delimiters.
func ParseBlocks(source string) (VanBlock, error) {
	var block VanBlock
	if strings.TrimSpace(source) == "" {
		return block, nil
	}

	raws, err := splitTopLevelBlocks(source)
	if err != nil {
		return block, err
	}

	sawPrimaryStyle := false
	for _, r := range raws {
		switch r.tag {
		case "template":
			block.Template = r.content
		case "script":
			if r.attrs["setup"] {
				block.ScriptSetup = r.content
			} else {
				block.ScriptServer = r.content
			}
		case "style":
			if !sawPrimaryStyle {
				block.Style = r.content
				block.StyleScoped = r.attrs["scoped"]
				sawPrimaryStyle = true
			} else {
				block.ExtraStyles = append(block.ExtraStyles, StyleBlock{
					CSS:    r.content,
					Scoped: r.attrs["scoped"],
				})
			}
		}
	}

	if block.ScriptSetup != "" {
		imports, scriptImports := scanImports(block.ScriptSetup)
		block.Imports = imports
		block.ScriptImports = scriptImports

		props, err := ParseDefineProps(block.ScriptSetup)
		if err != nil {
			return block, err
		}
		block.Props = props
	}

	return block, nil
}

// rawBlock is one top-level <template>/<script>/<style> occurrence before
// it is assigned to a VanBlock field.
type rawBlock struct {
	tag     string
	attrs   map[string]bool
	content string
}

// splitTopLevelBlocks scans the top level of source for <template>,
// <script>, and <style> block openers, matching each to its closing tag
// with a depth-aware scan that treats nested same-name occurrences, HTML
// comments, and (inside <template> only) CDATA sections as non-structural.
func splitTopLevelBlocks(source string) ([]rawBlock, error) {
	var blocks []rawBlock
	i := 0
	for i < len(source) {
		tag, tagStart, tagEnd, attrs, ok := nextBlockOpener(source, i)
		if !ok {
			break
		}
		contentStart := tagEnd
		contentEnd, after, ok := findBlockClose(source, tag, contentStart)
		if !ok {
			return nil, fmt.Errorf("unbalanced <%s> block starting at byte %d", tag, tagStart)
		}
		blocks = append(blocks, rawBlock{
			tag:     tag,
			attrs:   attrs,
			content: source[contentStart:contentEnd],
		})
		i = after
	}
	return blocks, nil
}

var blockTagNames = []string{"template", "script", "style"}

// nextBlockOpener finds the next <template, <script, or <style opening tag
// at or after i, returning its tag name, the byte offset of '<', the byte
// offset just past the tag's closing '>', and its parsed boolean
// attributes.
func nextBlockOpener(source string, i int) (tag string, tagStart, tagEnd int, attrs map[string]bool, ok bool) {
	best := -1
	var bestTag string
	for _, name := range blockTagNames {
		idx := indexTagOpen(source, i, name)
		if idx == -1 {
			continue
		}
		if best == -1 || idx < best {
			best = idx
			bestTag = name
		}
	}
	if best == -1 {
		return "", 0, 0, nil, false
	}
	closeIdx := strings.IndexByte(source[best:], '>')
	if closeIdx == -1 {
		return "", 0, 0, nil, false
	}
	closeIdx += best
	tagBody := source[best+1+len(bestTag) : closeIdx]
	return bestTag, best, closeIdx + 1, parseBoolAttrs(tagBody), true
}

// indexTagOpen finds the next occurrence of "<"+name that opens a tag (the
// character following the name must be whitespace, '>', or '/') at or after
// i. Returns -1 if none.
func indexTagOpen(source string, i int, name string) int {
	needle := "<" + name
	for {
		idx := strings.Index(source[i:], needle)
		if idx == -1 {
			return -1
		}
		pos := i + idx
		after := pos + len(needle)
		if after >= len(source) {
			return -1
		}
		c := source[after]
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '>' || c == '/' {
			return pos
		}
		i = pos + 1
	}
}

// parseBoolAttrs tokenizes an opening tag's attribute region and returns
// the set of bare or valued attribute names present. Attribute parsing is
// presence-only per spec.md §4.1: no value-quoting rules beyond flagging
// which names occur.
func parseBoolAttrs(tagBody string) map[string]bool {
	attrs := make(map[string]bool)
	i := 0
	for i < len(tagBody) {
		c := tagBody[i]
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '/' {
			i++
			continue
		}
		start := i
		for i < len(tagBody) && tagBody[i] != '=' && tagBody[i] != ' ' && tagBody[i] != '\t' && tagBody[i] != '\n' && tagBody[i] != '\r' {
			i++
		}
		name := tagBody[start:i]
		if name != "" {
			attrs[name] = true
		}
		if i < len(tagBody) && tagBody[i] == '=' {
			i++
			if i < len(tagBody) && (tagBody[i] == '"' || tagBody[i] == '\'') {
				quote := tagBody[i]
				i++
				for i < len(tagBody) && tagBody[i] != quote {
					i++
				}
				i++ // past closing quote
			} else {
				for i < len(tagBody) && tagBody[i] != ' ' && tagBody[i] != '\t' {
					i++
				}
			}
		}
	}
	return attrs
}

// findBlockClose scans forward from contentStart for the closing tag
// matching tag, tracking nesting of same-name opening tags and ignoring
// text inside HTML comments and (for <template> only) CDATA sections.
// Returns the byte offset where the block's content ends (start of
// "</tag>") and the offset just past the closing tag.
func findBlockClose(source, tag string, contentStart int) (contentEnd, after int, ok bool) {
	depth := 1
	i := contentStart
	openNeedle := "<" + tag
	closeNeedle := "</" + tag
	for i < len(source) {
		if strings.HasPrefix(source[i:], "<!--") {
			end := strings.Index(source[i:], "-->")
			if end == -1 {
				return 0, 0, false
			}
			i += end + 3
			continue
		}
		if tag == "template" && strings.HasPrefix(source[i:], "<![CDATA[") {
			end := strings.Index(source[i:], "]]>")
			if end == -1 {
				return 0, 0, false
			}
			i += end + 3
			continue
		}
		if strings.HasPrefix(source[i:], closeNeedle) {
			closeEnd := strings.IndexByte(source[i:], '>')
			if closeEnd == -1 {
				return 0, 0, false
			}
			depth--
			if depth == 0 {
				return i, i + closeEnd + 1, true
			}
			i += closeEnd + 1
			continue
		}
		if idx := indexTagOpen(source, i, tag); idx == i {
			closeEnd := strings.IndexByte(source[i:], '>')
			if closeEnd == -1 {
				return 0, 0, false
			}
			// A self-closing opener (<script/>) never nests.
			if source[i:i+closeEnd][len(source[i:i+closeEnd])-1] != '/' {
				depth++
			}
			i += closeEnd + 1
			continue
		}
		i++
	}
	return 0, 0, false
}

// scanImports walks script_setup and classifies every import statement as
// either a VanImport (a bare default import whose path ends in .van and
// whose identifier starts with an upper-case ASCII letter) or a
// ScriptImport (anything else), per spec.md §4.1 "Import extraction".
func scanImports(script string) ([]VanImport, []ScriptImport) {
	mask := maskJS(script)
	var vanImports []VanImport
	var scriptImports []ScriptImport

	i := 0
	for {
		idx := indexWord(mask, i, "import")
		if idx == -1 {
			break
		}
		stmtEnd, vi, si, ok := parseImportStatement(script, mask, idx)
		if !ok {
			i = idx + len("import")
			continue
		}
		if vi != nil {
			vanImports = append(vanImports, *vi)
		}
		if si != nil {
			scriptImports = append(scriptImports, *si)
		}
		i = stmtEnd
	}
	return vanImports, scriptImports
}

// indexWord finds the next whole-word occurrence of word in mask at or
// after i.
func indexWord(mask string, i int, word string) int {
	for {
		idx := strings.Index(mask[i:], word)
		if idx == -1 {
			return -1
		}
		pos := i + idx
		before := pos == 0 || !isIdentPart(mask[pos-1])
		afterPos := pos + len(word)
		after := afterPos >= len(mask) || !isIdentPart(mask[afterPos])
		if before && after {
			return pos
		}
		i = pos + 1
	}
}

// parseImportStatement parses one import statement starting at the
// "import" keyword (index kw in both src and mask). It returns the index
// just past the statement, and at most one of (VanImport, ScriptImport).
func parseImportStatement(src, mask string, kw int) (stmtEnd int, vi *VanImport, si *ScriptImport, ok bool) {
	i := kw + len("import")
	i = skipSpace(mask, i)

	isTypeOnly := false
	if word, next, wok := readIdent(mask, i); wok && word == "type" {
		// Only consume "type" as a modifier if it isn't itself the default
		// binding of `import type from '...'` (exceedingly rare; treat the
		// common case).
		after := skipSpace(mask, next)
		if after < len(mask) && mask[after] != ',' && !strings.HasPrefix(mask[after:], "from") {
			isTypeOnly = true
			i = after
		}
	}

	// Side-effect import: import 'path'
	if i < len(src) && (src[i] == '\'' || src[i] == '"') {
		path, next, qok := readQuoted(src, i)
		if !qok {
			return 0, nil, nil, false
		}
		end := skipToStatementEnd(src, next)
		return end, nil, &ScriptImport{Raw: src[kw:end], IsTypeOnly: isTypeOnly, Path: path}, true
	}

	// Namespace or named imports: import * as X from '...' / import { a } from '...'
	simpleDefault := ""
	if i < len(src) && src[i] == '*' {
		// not a simple default form
	} else if i < len(src) && src[i] == '{' {
		// not a simple default form
	} else if ident, next, iok := readIdent(mask, i); iok {
		simpleDefault = ident
		i = next
		i = skipSpace(mask, i)
		if i < len(mask) && mask[i] == ',' {
			simpleDefault = "" // `import X, { y } from ...` is not the simple single-default form
		}
	}

	fromIdx := indexWord(mask, i, "from")
	if fromIdx == -1 {
		return 0, nil, nil, false
	}
	j := skipSpace(mask, fromIdx+len("from"))
	if j >= len(src) || (src[j] != '\'' && src[j] != '"') {
		return 0, nil, nil, false
	}
	path, next, qok := readQuoted(src, j)
	if !qok {
		return 0, nil, nil, false
	}
	end := skipToStatementEnd(src, next)
	raw := src[kw:end]

	if simpleDefault != "" && strings.HasSuffix(path, ".van") && len(simpleDefault) > 0 &&
		simpleDefault[0] >= 'A' && simpleDefault[0] <= 'Z' {
		return end, &VanImport{
			PascalName: simpleDefault,
			KebabTag:   toKebab(simpleDefault),
			Path:       path,
		}, nil, true
	}
	return end, nil, &ScriptImport{Raw: raw, IsTypeOnly: isTypeOnly, Path: path}, true
}

// skipToStatementEnd advances past any spaces/tabs and then an optional
// ';', never past a newline.
func skipToStatementEnd(src string, i int) int {
	j := i
	for j < len(src) && (src[j] == ' ' || src[j] == '\t') {
		j++
	}
	if j < len(src) && src[j] == ';' {
		j++
	}
	return j
}

// toKebab converts a PascalCase identifier to kebab-case, treating runs of
// upper-case letters as a single unit (spec.md §3 VanImport.kebab_tag).
func toKebab(name string) string {
	var b strings.Builder
	for i := 0; i < len(name); i++ {
		r := name[i]
		isUpper := r >= 'A' && r <= 'Z'
		if i > 0 && isUpper {
			prev := name[i-1]
			prevLowerOrDigit := (prev >= 'a' && prev <= 'z') || (prev >= '0' && prev <= '9')
			prevUpper := prev >= 'A' && prev <= 'Z'
			nextLower := i+1 < len(name) && name[i+1] >= 'a' && name[i+1] <= 'z'
			if prevLowerOrDigit || (prevUpper && nextLower) {
				b.WriteByte('-')
			}
		}
		if isUpper {
			b.WriteByte(r - 'A' + 'a')
		} else {
			b.WriteByte(r)
		}
	}
	return b.String()
}

// ParseImports extracts only the component (.van) imports from a
// script_setup block.
func ParseImports(script string) []VanImport {
	imports, _ := scanImports(script)
	return imports
}

// ParseScriptImports extracts only the non-component imports from a
// script_setup block.
func ParseScriptImports(script string) []ScriptImport {
	_, scriptImports := scanImports(script)
	return scriptImports
}

// ParseDefineProps locates a single defineProps({ ... }) call and parses
// its object literal (spec.md §4.1 "Prop extraction"). Returns an error if
// two props share a name.
func ParseDefineProps(script string) ([]PropDef, error) {
	mask := maskJS(script)
	callIdx := indexWord(mask, 0, "defineProps")
	if callIdx == -1 {
		return nil, nil
	}
	parenIdx := skipSpace(mask, callIdx+len("defineProps"))
	if parenIdx >= len(script) || script[parenIdx] != '(' {
		return nil, nil
	}
	parenClose, ok := findMatching(script, mask, parenIdx)
	if !ok {
		return nil, nil
	}
	argStart := skipSpace(mask, parenIdx+1)
	if argStart >= len(script) || script[argStart] != '{' {
		return nil, nil
	}
	objClose, ok := findMatching(script, mask, argStart)
	if !ok || objClose > parenClose {
		return nil, nil
	}

	inner := script[argStart+1 : objClose]
	innerMask := mask[argStart+1 : objClose]

	var props []PropDef
	seen := make(map[string]bool)
	for _, entry := range splitTopLevel(inner, innerMask) {
		prop, ok := parsePropEntry(entry)
		if !ok {
			continue
		}
		if seen[prop.Name] {
			return nil, fmt.Errorf("duplicate prop %q in defineProps", prop.Name)
		}
		seen[prop.Name] = true
		props = append(props, prop)
	}
	return props, nil
}

// parsePropEntry parses one "key: value" entry of a defineProps object
// literal.
func parsePropEntry(entry string) (PropDef, bool) {
	colon := strings.IndexByte(entry, ':')
	if colon == -1 {
		return PropDef{}, false
	}
	name := strings.Trim(strings.TrimSpace(entry[:colon]), `'"`)
	if name == "" {
		return PropDef{}, false
	}
	value := strings.TrimSpace(entry[colon+1:])
	prop := PropDef{Name: name}

	if strings.HasPrefix(value, "{") {
		valMask := maskJS(value)
		close, ok := findMatching(value, valMask, 0)
		if !ok {
			return prop, true
		}
		inner := value[1:close]
		innerMask := valMask[1:close]
		for _, field := range splitTopLevel(inner, innerMask) {
			fc := strings.IndexByte(field, ':')
			if fc == -1 {
				continue
			}
			key := strings.TrimSpace(field[:fc])
			val := strings.TrimSpace(field[fc+1:])
			switch key {
			case "type":
				prop.PropType = val
			case "required":
				prop.Required = val == "true"
			}
			// "default" and any other key are tolerated and ignored.
		}
		return prop, true
	}

	prop.PropType = value
	return prop, true
}
