package strategies

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Document is the on-disk strategy document.
type Document struct {
	Strategies []Strategy `json:"strategies" validate:"required,dive"`
}

type Strategy struct {
	StrategyType string    `json:"strategy_type" validate:"required"`
	FocusPool    FocusPool `json:"focus_pool"`
}

// Names returns every strategy_type in document order.
func (d *Document) Names() []string {
	names := make([]string, 0, len(d.Strategies))
	for _, s := range d.Strategies {
		names = append(names, s.StrategyType)
	}
	return names
}

// Find returns the first strategy whose strategy_type equals name, ignoring
// case.
func (d *Document) Find(name string) (Strategy, bool) {
	want := strings.ToLower(name)
	for _, s := range d.Strategies {
		if strings.ToLower(s.StrategyType) == want {
			return s, true
		}
	}
	return Strategy{}, false
}

// FocusPool maps industry names to focus areas and remembers the order in
// which industries appear in the document.
type FocusPool struct {
	industries []string
	areas      map[string][]string
}

// NewFocusPool builds a pool whose industries keep the order of entries.
func NewFocusPool(entries ...FocusEntry) FocusPool {
	var p FocusPool
	for _, e := range entries {
		p.set(e.Industry, e.Areas)
	}
	return p
}

type FocusEntry struct {
	Industry string
	Areas    []string
}

// Industries returns the pool keys in document order.
func (p FocusPool) Industries() []string {
	out := make([]string, len(p.industries))
	copy(out, p.industries)
	return out
}

// Lookup is an exact, case-sensitive key match.
func (p FocusPool) Lookup(industry string) ([]string, bool) {
	areas, ok := p.areas[industry]
	return areas, ok
}

func (p FocusPool) Len() int { return len(p.industries) }

// A repeated key keeps its first position and takes the last value.
func (p *FocusPool) set(industry string, areas []string) {
	if p.areas == nil {
		p.areas = map[string][]string{}
	}
	if _, exists := p.areas[industry]; !exists {
		p.industries = append(p.industries, industry)
	}
	p.areas[industry] = areas
}

func (p *FocusPool) UnmarshalJSON(data []byte) error {
	*p = FocusPool{}
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("focus_pool must be an object")
	}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		industry, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("focus_pool: unexpected key %v", keyTok)
		}
		var areas []string
		if err := dec.Decode(&areas); err != nil {
			return fmt.Errorf("focus_pool[%q]: %w", industry, err)
		}
		p.set(industry, areas)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

func (p FocusPool) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, industry := range p.industries {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(industry)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		areas := p.areas[industry]
		if areas == nil {
			areas = []string{}
		}
		value, err := json.Marshal(areas)
		if err != nil {
			return nil, err
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
