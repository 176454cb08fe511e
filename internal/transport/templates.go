package transport

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"strings"
	"sync"
	"time"

	"storefront-admin/internal/domain"

	"github.com/shopspring/decimal"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

const layoutTemplate = "templates/layout.html"

// TemplateCache holds parsed page templates, each combined with the layout
type TemplateCache struct {
	cache map[string]*template.Template
	mu    sync.RWMutex
	funcs template.FuncMap
}

func NewTemplateCache() *TemplateCache {
	return &TemplateCache{
		cache: make(map[string]*template.Template),
		funcs: defaultFuncs(),
	}
}

func (tc *TemplateCache) AddFunc(name string, fn interface{}) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.funcs[name] = fn
}

// Load parses every page template against the shared layout
func (tc *TemplateCache) Load() error {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	pages, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return err
	}

	for _, page := range pages {
		if page == layoutTemplate {
			continue
		}
		name := path.Base(page)
		tmpl, err := template.New(name).Funcs(tc.funcs).ParseFS(templateFS, layoutTemplate, page)
		if err != nil {
			return fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		tc.cache[name] = tmpl
	}
	return nil
}

func (tc *TemplateCache) Get(name string) *template.Template {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return tc.cache[name]
}

// StaticFS serves the stylesheet and scripts under /static/
func StaticFS() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

func defaultFuncs() template.FuncMap {
	return template.FuncMap{
		"money": func(d decimal.Decimal) string {
			return "$" + d.StringFixed(2)
		},
		"moneyf": func(f float64) string {
			return "$" + decimal.NewFromFloat(f).StringFixed(2)
		},
		"date": func(ts domain.Timestamp) string {
			return ts.Display()
		},
		"datetime": func(t time.Time) string {
			return t.Local().Format("Jan 02, 2006 15:04")
		},
		"join":  strings.Join,
		"lower": strings.ToLower,
		"add": func(a, b int) int {
			return a + b
		},
		"contains": func(values []string, v string) bool {
			for _, candidate := range values {
				if candidate == v {
					return true
				}
			}
			return false
		},
		"statusClass": func(status interface{}) string {
			return "status-" + strings.ToLower(strings.ReplaceAll(fmt.Sprint(status), " ", "-"))
		},
		"truncate": func(s string, n int) string {
			runes := []rune(s)
			if len(runes) <= n {
				return s
			}
			return string(runes[:n]) + "..."
		},
		"orderStatuses": func() []domain.OrderStatus {
			return domain.OrderStatuses
		},
		"inquiryStatuses": func() []domain.InquiryStatus {
			return domain.InquiryStatuses
		},
		"blogStatuses": func() []domain.BlogStatus {
			return domain.BlogStatuses
		},
	}
}
