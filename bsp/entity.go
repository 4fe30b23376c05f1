// SPDX-License-Identifier: GPL-2.0-or-later

package bsp

import (
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"q2map/math/vec"
)

// Entity is one block of key value pairs of the entity lump.
type Entity struct {
	properties map[string]string
	keys       []string // in file order
}

func newEntity() *Entity {
	return &Entity{properties: make(map[string]string)}
}

func (e *Entity) set(k, v string) {
	if _, ok := e.properties[k]; !ok {
		e.keys = append(e.keys, k)
	}
	e.properties[k] = v
}

func (e *Entity) Property(name string) (string, bool) {
	v, ok := e.properties[name]
	return v, ok
}

// Name returns the classname.
func (e *Entity) Name() (string, bool) {
	v, ok := e.properties["classname"]
	return v, ok
}

// PropertyNames returns the keys in the order of the entity text.
func (e *Entity) PropertyNames() []string {
	return append([]string(nil), e.keys...)
}

// Vector parses a property of the form "x y z".
func (e *Entity) Vector(name string) (vec.Vec3, bool) {
	var r vec.Vec3
	v, ok := e.properties[name]
	if !ok {
		return r, false
	}
	f := strings.Fields(v)
	if len(f) != 3 {
		return r, false
	}
	for i, s := range f {
		x, err := strconv.ParseFloat(s, 32)
		if err != nil {
			return r, false
		}
		r[i] = float32(x)
	}
	return r, true
}

type entityTokenizer struct {
	data []byte
	pos  int
	line int
}

// next returns the next token. Quoted strings are returned without the
// quotes, braces are single tokens, // comments are skipped.
func (t *entityTokenizer) next() (tok string, quoted bool, ok bool) {
	for {
		for t.pos < len(t.data) && t.data[t.pos] <= ' ' {
			if t.data[t.pos] == '\n' {
				t.line++
			}
			t.pos++
		}
		if t.pos >= len(t.data) {
			return "", false, false
		}
		if t.data[t.pos] == '/' && t.pos+1 < len(t.data) && t.data[t.pos+1] == '/' {
			for t.pos < len(t.data) && t.data[t.pos] != '\n' {
				t.pos++
			}
			continue
		}
		break
	}
	switch c := t.data[t.pos]; c {
	case '{', '}':
		t.pos++
		return string(c), false, true
	case '"':
		t.pos++
		start := t.pos
		for t.pos < len(t.data) && t.data[t.pos] != '"' {
			if t.data[t.pos] == '\n' {
				t.line++
			}
			t.pos++
		}
		tok = string(t.data[start:t.pos])
		if t.pos < len(t.data) {
			t.pos++ // closing quote
		}
		return tok, true, true
	}
	start := t.pos
	for t.pos < len(t.data) && t.data[t.pos] > ' ' && t.data[t.pos] != '{' && t.data[t.pos] != '}' && t.data[t.pos] != '"' {
		t.pos++
	}
	return string(t.data[start:t.pos]), false, true
}

// ParseEntities parses text of the form
//
//	{
//	"classname" "worldspawn"
//	"message" "The Edge"
//	}
//	{
//	...
//	}
func ParseEntities(data []byte) ([]*Entity, error) {
	t := &entityTokenizer{data: data, line: 1}
	var es []*Entity
	for {
		tok, quoted, ok := t.next()
		if !ok {
			return es, nil
		}
		if tok != "{" || quoted {
			return nil, errors.Errorf("line %d: found %q when expecting {", t.line, tok)
		}
		e := newEntity()
		for {
			key, quoted, ok := t.next()
			if !ok {
				return nil, errors.Errorf("line %d: EOF without closing brace", t.line)
			}
			if key == "}" && !quoted {
				break
			}
			if key == "{" && !quoted {
				return nil, errors.Errorf("line %d: unexpected {", t.line)
			}
			value, quoted, ok := t.next()
			if !ok {
				return nil, errors.Errorf("line %d: EOF without closing brace", t.line)
			}
			if (value == "}" || value == "{") && !quoted {
				return nil, errors.Errorf("line %d: closing brace without data", t.line)
			}
			e.set(key, value)
		}
		es = append(es, e)
	}
}

// Worldspawn returns the worldspawn entity or nil.
func (m *Map) Worldspawn() *Entity {
	for _, e := range m.Entities {
		if n, _ := e.Name(); n == "worldspawn" {
			return e
		}
	}
	return nil
}

// ClassNames returns the sorted set of classnames used in the map.
func (m *Map) ClassNames() []string {
	seen := make(map[string]bool)
	var r []string
	for _, e := range m.Entities {
		n, ok := e.Name()
		if !ok || seen[n] {
			continue
		}
		seen[n] = true
		r = append(r, n)
	}
	sort.Strings(r)
	return r
}
