package inifile

import (
	"bufio"
	"bytes"
	"strings"

	ini "git.sr.ht/~spc/go-ini"

	"github.com/pgguru/pgbackrest/internal/cfgerror"
	"github.com/pgguru/pgbackrest/internal/l10n"
)

// Document is the parsed INI document handed to the Source Merger: for
// every (section, key) a Values list in file order, so a key repeated
// within a section is already list-valued rather than requiring a
// separate syntax for multi-valued keys.
type Document struct {
	Sections map[string]*Section
}

// Section holds every key seen under one "[name]" header, in file order.
type Section struct {
	Name string
	Keys map[string][]string
	// Order lists the keys in first-seen order, so diagnostics and any
	// future rendering stay deterministic.
	Order []string
}

func newDocument() *Document {
	return &Document{Sections: map[string]*Section{}}
}

func (d *Document) section(name string) *Section {
	s, ok := d.Sections[name]
	if !ok {
		s = &Section{Name: name, Keys: map[string][]string{}}
		d.Sections[name] = s
	}
	return s
}

func (s *Section) add(key, value string) {
	if _, ok := s.Keys[key]; !ok {
		s.Order = append(s.Order, key)
	}
	s.Keys[key] = append(s.Keys[key], value)
}

// Get returns the values recorded for (section, key), and whether the key
// was present at all.
func (d *Document) Get(section, key string) ([]string, bool) {
	s, ok := d.Sections[section]
	if !ok {
		return nil, false
	}
	v, ok := s.Keys[key]
	return v, ok
}

// SectionNames returns every section name that begins with prefix (used by
// the merger to walk "[stanza...]"/"[global...]" families), in sorted
// order for determinism.
func (d *Document) SectionNames() []string {
	out := make([]string, 0, len(d.Sections))
	for name := range d.Sections {
		out = append(out, name)
	}
	sortStrings(out)
	return out
}

func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

// validateStructure runs the part through git.sr.ht/~spc/go-ini as a
// structural pre-validation pass: each concatenated part must parse as
// valid INI independently before the merger ever sees it. The parsed
// result itself is discarded — internal/inifile's own hand-rolled
// parseDocument below is what the merger actually consumes, because
// go-ini's flat map[section]map[key]value shape can't preserve
// repeated-key-as-list or flag a key duplicated under two aliases, both of
// which the merger needs (see DESIGN.md).
func validateStructure(name string, data []byte) error {
	if err := ini.Unmarshal(data, &struct{}{}); err != nil {
		return cfgerror.New(cfgerror.KindFormatError, l10n.T("'%s' is not valid INI: %v", name, err))
	}
	return nil
}

// parseDocument hand-parses INI text into a Document. Recognized syntax:
// blank lines; comment lines starting with '#' or ';'; "[section]"
// headers; "key=value" entries, trimmed of surrounding whitespace. A key
// repeated within the same section accumulates as an ordered values list;
// "key[]=value" is the explicit-multi-value spelling of the same thing —
// the "[]" suffix is stripped and the value appended to the same list a
// bare "key=value" line would build, so a caller may freely mix the two
// spellings for the same key within a section.
func parseDocument(name string, data []byte) (*Document, error) {
	doc := newDocument()
	currentSection := ""
	doc.section(currentSection) // unnamed section catches any stray pre-header keys

	scanner := bufio.NewScanner(bytes.NewReader(data))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}

		if strings.HasPrefix(line, "[") {
			if !strings.HasSuffix(line, "]") {
				return nil, cfgerror.New(cfgerror.KindFormatError, l10n.T("'%s' line %d: unterminated section header", name, lineNo))
			}
			currentSection = strings.TrimSpace(line[1 : len(line)-1])
			doc.section(currentSection)
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, cfgerror.New(cfgerror.KindFormatError, l10n.T("'%s' line %d: expected 'key=value'", name, lineNo))
		}
		key = strings.TrimSuffix(strings.TrimSpace(key), "[]")
		doc.section(currentSection).add(key, strings.TrimSpace(value))
	}
	if err := scanner.Err(); err != nil {
		return nil, cfgerror.New(cfgerror.KindFormatError, l10n.T("'%s': %v", name, err))
	}

	return doc, nil
}
