// Package i18n holds the localized strings and time formats used in emails.
//
// Entries are YAML trees rooted at the locale name and addressed by dotted keys
// (user_mailer.booking_success_subject). Time formats live under time.formats.*
// as strftime patterns; %a and %b use date.abbr_day_names and
// date.abbr_month_names when present.
package i18n

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/locales/en_AU"
	ut "github.com/go-playground/universal-translator"
	"github.com/lestrrat-go/strftime"
	"gopkg.in/yaml.v3"
)

// DefaultLocale is the only locale shipped with the binary.
const DefaultLocale = "en-AU"

//go:embed locales/*.yaml
var embedded embed.FS

var (
	// ErrMissingTranslation is returned for keys absent from the catalog.
	ErrMissingTranslation = errors.New("i18n: missing translation")
	// ErrMissingFormat is returned for time format names absent from the catalog.
	ErrMissingFormat = errors.New("i18n: missing time format")
)

// Translator resolves localized strings and formats times.
type Translator interface {
	Translate(key string) (string, error)
	Localize(t time.Time, format string) (string, error)
}

// Catalog is a Translator loaded from YAML. It is safe for concurrent use.
type Catalog struct {
	locale string
	trans  ut.Translator

	dayNames   []string
	monthNames []string

	mu      sync.RWMutex
	formats map[string]*strftime.Strftime
	entries map[string]string
}

// Options configures New.
type Options struct {
	// Locale selects the root key in the YAML files, DefaultLocale when empty.
	Locale string
	// Path is an optional YAML file whose entries override the embedded ones.
	Path string
}

// New loads the embedded catalog for opts.Locale and applies the override file.
func New(opts Options) (*Catalog, error) {
	locale := opts.Locale
	if locale == "" {
		locale = DefaultLocale
	}

	entries := map[string]any{}

	base, err := embedded.ReadFile("locales/" + locale + ".yaml")
	if err != nil && opts.Path == "" {
		return nil, fmt.Errorf("i18n: locale %q is not embedded: %w", locale, err)
	}
	if err == nil {
		if err := mergeYAML(entries, base, locale); err != nil {
			return nil, err
		}
	}

	if opts.Path != "" {
		// #nosec G304 -- path comes from trusted config.
		override, err := os.ReadFile(opts.Path)
		if err != nil {
			return nil, fmt.Errorf("i18n: read %s: %w", opts.Path, err)
		}
		if err := mergeYAML(entries, override, locale); err != nil {
			return nil, err
		}
	}

	enAU := en_AU.New()
	uni := ut.New(enAU, enAU)
	trans, _ := uni.GetTranslator(enAU.Locale())

	c := &Catalog{
		locale:  locale,
		trans:   trans,
		formats: map[string]*strftime.Strftime{},
		entries: map[string]string{},
	}

	for key, v := range entries {
		switch val := v.(type) {
		case string:
			c.entries[key] = val
			if err := trans.Add(key, val, true); err != nil {
				return nil, fmt.Errorf("i18n: add %s: %w", key, err)
			}
		case []any:
			switch key {
			case "date.abbr_day_names":
				c.dayNames = toStrings(val)
			case "date.abbr_month_names":
				c.monthNames = toStrings(val)
			}
		}
	}

	return c, nil
}

// Locale returns the catalog's locale name.
func (c *Catalog) Locale() string {
	return c.locale
}

// Translate returns the string stored under key.
func (c *Catalog) Translate(key string) (string, error) {
	s, err := c.trans.T(key)
	if err != nil || s == "" {
		return "", fmt.Errorf("%w: %s.%s", ErrMissingTranslation, c.locale, key)
	}

	return s, nil
}

// Localize formats t with the strftime pattern stored under time.formats.<format>.
// t is rendered in its own location; callers convert beforehand.
func (c *Catalog) Localize(t time.Time, format string) (string, error) {
	f, err := c.compiled(format)
	if err != nil {
		return "", err
	}

	return f.FormatString(t), nil
}

func (c *Catalog) compiled(format string) (*strftime.Strftime, error) {
	c.mu.RLock()
	f, ok := c.formats[format]
	c.mu.RUnlock()
	if ok {
		return f, nil
	}

	pattern, ok := c.entries["time.formats."+format]
	if !ok {
		return nil, fmt.Errorf("%w: %s.time.formats.%s", ErrMissingFormat, c.locale, format)
	}

	f, err := strftime.New(pattern, c.specifications()...)
	if err != nil {
		return nil, fmt.Errorf("i18n: compile %s: %w", format, err)
	}

	c.mu.Lock()
	c.formats[format] = f
	c.mu.Unlock()

	return f, nil
}

func (c *Catalog) specifications() []strftime.Option {
	var opts []strftime.Option

	if len(c.dayNames) == 7 {
		names := c.dayNames
		opts = append(opts, strftime.WithSpecification('a', strftime.AppendFunc(func(b []byte, t time.Time) []byte {
			return append(b, names[t.Weekday()]...)
		})))
	}

	if len(c.monthNames) == 13 {
		names := c.monthNames
		opts = append(opts, strftime.WithSpecification('b', strftime.AppendFunc(func(b []byte, t time.Time) []byte {
			return append(b, names[t.Month()]...)
		})))
	}

	return opts
}

func mergeYAML(dst map[string]any, data []byte, locale string) error {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("i18n: parse yaml: %w", err)
	}

	root, ok := doc[locale].(map[string]any)
	if !ok {
		return fmt.Errorf("i18n: yaml has no %q root", locale)
	}

	flatten(dst, "", root)
	return nil
}

func flatten(dst map[string]any, prefix string, node map[string]any) {
	for k, v := range node {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}

		if child, ok := v.(map[string]any); ok {
			flatten(dst, key, child)
			continue
		}
		dst[key] = v
	}
}

func toStrings(vals []any) []string {
	out := make([]string, len(vals))
	for i, v := range vals {
		if s, ok := v.(string); ok {
			out[i] = strings.TrimSpace(s)
		}
	}
	return out
}
