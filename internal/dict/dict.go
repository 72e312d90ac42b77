package dict

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrUnavailable wraps every failure to load a table file. Callers treat it
// as fatal at startup.
var ErrUnavailable = errors.New("dictionary unavailable")

const (
	chardefBegin = "%chardef begin"
	chardefEnd   = "%chardef end"
)

// Dictionary holds the single-character and phrase tables. Each code maps to
// its candidates in file order. It is read-only once loading is done.
type Dictionary struct {
	chars   map[string][]string
	phrases map[string][]string
}

func New() *Dictionary {
	return &Dictionary{
		chars:   make(map[string][]string),
		phrases: make(map[string][]string),
	}
}

// Load builds a dictionary from a phrase file and a cin2 char table.
func Load(phrasePath, charPath string) (*Dictionary, error) {
	d := New()
	if err := d.LoadPhraseFile(phrasePath); err != nil {
		return nil, err
	}
	if err := d.LoadCIN2File(charPath); err != nil {
		return nil, err
	}
	return d, nil
}

// AddChar appends a single-character candidate for code.
func (d *Dictionary) AddChar(code, value string) {
	d.chars[code] = append(d.chars[code], value)
}

func (d *Dictionary) AddPhrase(code, value string) {
	d.phrases[code] = append(d.phrases[code], value)
}

// LoadPhraseFile reads "code<TAB>phrase" lines into the phrase table.
func (d *Dictionary) LoadPhraseFile(path string) error {
	return d.loadFile(path, "phrase", d.ReadPhrases)
}

// LoadCIN2File reads the %chardef block of a cin2 table into the char table.
func (d *Dictionary) LoadCIN2File(path string) error {
	return d.loadFile(path, "cin2", d.ReadCIN2)
}

func (d *Dictionary) loadFile(path, kind string, read func(io.Reader) error) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: open %s table %s: %w", ErrUnavailable, kind, path, err)
	}
	defer file.Close()

	if err := read(file); err != nil {
		return fmt.Errorf("%w: read %s table %s: %w", ErrUnavailable, kind, path, err)
	}
	return nil
}

func (d *Dictionary) ReadPhrases(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if code, value, ok := splitEntry(line); ok {
			d.AddPhrase(code, value)
		}
	}
	return scanner.Err()
}

func (d *Dictionary) ReadCIN2(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	inChardef := false
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case chardefBegin:
			inChardef = true
			continue
		case chardefEnd:
			inChardef = false
			continue
		}
		if !inChardef || line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if code, value, ok := splitEntry(line); ok {
			d.AddChar(code, value)
		}
	}
	return scanner.Err()
}

func splitEntry(line string) (string, string, bool) {
	code, value, ok := strings.Cut(line, "\t")
	if !ok {
		return "", "", false
	}
	code = strings.TrimSpace(code)
	value = strings.TrimSpace(value)
	if code == "" || value == "" {
		return "", "", false
	}
	return code, value, true
}

type jsonTables struct {
	Chars   map[string][]string `json:"chars"`
	Phrases map[string][]string `json:"phrases"`
}

// LoadJSON reads {"chars": {code: [...]}, "phrases": {code: [...]}}.
// Entries are appended after anything already loaded for the same code.
func (d *Dictionary) LoadJSON(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: open json table %s: %w", ErrUnavailable, path, err)
	}
	defer file.Close()

	var raw jsonTables
	if err := json.NewDecoder(file).Decode(&raw); err != nil {
		return fmt.Errorf("%w: parse json table %s: %w", ErrUnavailable, path, err)
	}
	for code, values := range raw.Chars {
		d.addAll(d.AddChar, code, values)
	}
	for code, values := range raw.Phrases {
		d.addAll(d.AddPhrase, code, values)
	}
	return nil
}

func (d *Dictionary) addAll(add func(code, value string), code string, values []string) {
	code = strings.TrimSpace(code)
	if code == "" {
		return
	}
	for _, value := range values {
		if value = strings.TrimSpace(value); value != "" {
			add(code, value)
		}
	}
}

// Merge appends every entry of other after the entries already present.
func (d *Dictionary) Merge(other *Dictionary) {
	if other == nil {
		return
	}
	for code, values := range other.chars {
		d.chars[code] = append(d.chars[code], values...)
	}
	for code, values := range other.phrases {
		d.phrases[code] = append(d.phrases[code], values...)
	}
}

func (d *Dictionary) LookupChars(code string) []string {
	if d == nil {
		return nil
	}
	return d.chars[code]
}

func (d *Dictionary) LookupPhrases(code string) []string {
	if d == nil {
		return nil
	}
	return d.phrases[code]
}

func (d *Dictionary) HasCode(code string) bool {
	if d == nil {
		return false
	}
	_, inChars := d.chars[code]
	_, inPhrases := d.phrases[code]
	return inChars || inPhrases
}

// Stats returns the number of distinct codes in each table.
func (d *Dictionary) Stats() (chars, phrases int) {
	if d == nil {
		return 0, 0
	}
	return len(d.chars), len(d.phrases)
}

// EachChar calls fn for every char-table code in unspecified code order.
// Values keep their insertion order.
func (d *Dictionary) EachChar(fn func(code string, values []string)) {
	for code, values := range d.chars {
		fn(code, values)
	}
}

func (d *Dictionary) EachPhrase(fn func(code string, values []string)) {
	for code, values := range d.phrases {
		fn(code, values)
	}
}
