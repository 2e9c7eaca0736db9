package parser

import (
	"regexp"
	"strings"
)

// Node is one element of a leniently parsed tag tree. The scanner never
// fails: mismatched close tags are reconciled against open ancestors, stray
// close tags are dropped, unclosed elements are closed at end of input, and
// anything that does not look like a tag (a bare "<" in SQL, "<=", prose)
// stays character data.
type Node struct {
	Name     string
	Attrs    map[string]string
	Children []*Node

	text strings.Builder
}

// Child returns the first direct child with the given name, or nil.
// Safe on a nil receiver.
func (n *Node) Child(name string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// ChildrenNamed returns all direct children with the given name, in
// document order.
func (n *Node) ChildrenNamed(name string) []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	for _, c := range n.Children {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// Attr returns the named attribute, or def when the attribute is absent
// or empty. Safe on a nil receiver.
func (n *Node) Attr(key, def string) string {
	if n == nil {
		return def
	}
	if v, ok := n.Attrs[key]; ok && v != "" {
		return v
	}
	return def
}

// Text returns the trimmed character data directly under this node, with
// any CDATA wrappers already unwrapped. Safe on a nil receiver.
func (n *Node) Text() string {
	if n == nil {
		return ""
	}
	return strings.TrimSpace(n.text.String())
}

// ParseTree scans s into a tag tree rooted at an unnamed wrapper node.
func ParseTree(s string) *Node {
	root := &Node{}
	stack := []*Node{root}
	top := func() *Node { return stack[len(stack)-1] }

	i := 0
	for i < len(s) {
		lt := strings.IndexByte(s[i:], '<')
		if lt < 0 {
			top().text.WriteString(s[i:])
			break
		}
		lt += i
		top().text.WriteString(s[i:lt])
		rest := s[lt:]

		switch {
		case strings.HasPrefix(rest, "<![CDATA["):
			end := strings.Index(rest, "]]>")
			if end < 0 {
				top().text.WriteString(rest[len("<![CDATA["):])
				i = len(s)
			} else {
				top().text.WriteString(rest[len("<![CDATA["):end])
				i = lt + end + len("]]>")
			}

		case strings.HasPrefix(rest, "<!--"):
			end := strings.Index(rest, "-->")
			if end < 0 {
				i = len(s)
			} else {
				i = lt + end + len("-->")
			}

		case strings.HasPrefix(rest, "</"):
			gt := strings.IndexByte(rest, '>')
			if gt < 0 {
				top().text.WriteString(rest)
				i = len(s)
				break
			}
			name := strings.TrimSpace(rest[2:gt])
			for j := len(stack) - 1; j >= 1; j-- {
				if stack[j].Name == name {
					stack = stack[:j]
					break
				}
			}
			i = lt + gt + 1

		default:
			if len(rest) < 2 || !isNameStart(rest[1]) {
				top().text.WriteByte('<')
				i = lt + 1
				break
			}
			gt := tagEnd(rest)
			if gt < 0 {
				top().text.WriteString(rest)
				i = len(s)
				break
			}
			inner := rest[1:gt]
			selfClose := strings.HasSuffix(inner, "/")
			if selfClose {
				inner = strings.TrimSuffix(inner, "/")
			}
			name, attrs, ok := splitTag(inner)
			if !ok {
				top().text.WriteString(rest[:gt+1])
				i = lt + gt + 1
				break
			}
			child := &Node{Name: name, Attrs: attrs}
			top().Children = append(top().Children, child)
			if !selfClose {
				stack = append(stack, child)
			}
			i = lt + gt + 1
		}
	}
	return root
}

func isNameStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// tagEnd finds the closing '>' of an open tag, skipping over quoted
// attribute values. Returns -1 when the tag never closes.
func tagEnd(s string) int {
	var quote byte
	for i := 1; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'':
			quote = c
		case '>':
			return i
		}
	}
	return -1
}

var (
	tagNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.:-]*`)
	attrRe    = regexp.MustCompile(`([A-Za-z_][A-Za-z0-9_.:-]*)\s*=\s*(?:"([^"]*)"|'([^']*)')`)
)

func splitTag(s string) (string, map[string]string, bool) {
	name := tagNameRe.FindString(s)
	if name == "" {
		return "", nil, false
	}
	tail := strings.TrimSpace(s[len(name):])
	attrs := map[string]string{}
	for _, m := range attrRe.FindAllStringSubmatch(tail, -1) {
		if m[2] != "" {
			attrs[m[1]] = m[2]
		} else {
			attrs[m[1]] = m[3]
		}
	}
	return name, attrs, true
}

// FindSection returns the raw text between the first <name> and </name>
// markers, for the soft-fallback path that runs when tree parsing found
// no usable envelope.
func FindSection(s, name string) (string, bool) {
	open := "<" + name + ">"
	close := "</" + name + ">"
	start := strings.Index(s, open)
	if start < 0 {
		return "", false
	}
	start += len(open)
	end := strings.Index(s[start:], close)
	if end < 0 {
		return "", false
	}
	return s[start : start+end], true
}

// StripCDATA removes a literal-data wrapper when the whole string is one.
func StripCDATA(s string) string {
	t := strings.TrimSpace(s)
	if strings.HasPrefix(t, "<![CDATA[") && strings.HasSuffix(t, "]]>") {
		return strings.TrimSpace(t[len("<![CDATA[") : len(t)-len("]]>")])
	}
	return t
}
