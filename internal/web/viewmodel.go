package web

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/qchem/gausscat/internal/models"
)

// PageData is shared by every page.
type PageData struct {
	Title        string
	User         string
	CSRF         string
	Sections     []SectionInfo
	RequireLogin bool
}

// Row is one table row of the index view.
type Row struct {
	ID    uint
	Cells []string
}

// ListViewModel backs the index view.
type ListViewModel struct {
	PageData
	Section SectionInfo
	Rows    []Row
}

// Item is one label/value pair of the details and delete views.
type Item struct {
	Label string
	Value string
}

// RecordViewModel backs the details and delete views.
type RecordViewModel struct {
	PageData
	Section SectionInfo
	ID      uint
	Items   []Item
	Error   string
}

// FormViewModel backs the create and edit views.
type FormViewModel struct {
	PageData
	Section SectionInfo
	Action  string
	ID      uint
	Values  map[string]string
	Errors  map[string][]string
	Lookups map[string][]models.Simple

	mu sync.Mutex
}

func newFormViewModel() *FormViewModel {
	return &FormViewModel{
		Values:  map[string]string{},
		Lookups: map[string][]models.Simple{},
	}
}

// HasErrors reports whether any field failed.
func (vm *FormViewModel) HasErrors() bool { return len(vm.Errors) > 0 }

// FieldErrors returns the messages for one field.
func (vm *FormViewModel) FieldErrors(name string) []string { return vm.Errors[name] }

// FormErrors returns the messages not tied to a field.
func (vm *FormViewModel) FormErrors() []string { return vm.Errors["$"] }

// Value returns the current value of one field.
func (vm *FormViewModel) Value(name string) string { return vm.Values[name] }

// Options returns the dropdown list of a lookup entity.
func (vm *FormViewModel) Options(entity string) []models.Simple { return vm.Lookups[entity] }

// Selected reports whether option id is the current value of field.
func (vm *FormViewModel) Selected(name string, id uint) bool {
	return vm.Values[name] == fmt.Sprint(id)
}

// loadLookups fetches every dropdown list concurrently.
func (vm *FormViewModel) loadLookups(ctx context.Context, cache *LookupCache, entities []string) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, entity := range entities {
		g.Go(func() error {
			items, err := cache.Get(ctx, entity)
			if err != nil {
				return fmt.Errorf("loading %s lookup: %w", entity, err)
			}
			vm.mu.Lock()
			vm.Lookups[entity] = items
			vm.mu.Unlock()
			return nil
		})
	}
	return g.Wait()
}

// SectionCount is one entry of the home page.
type SectionCount struct {
	SectionInfo
	Count int64
}

// HomeViewModel backs the home page.
type HomeViewModel struct {
	PageData
	Counts []SectionCount
}

// LoginViewModel backs the login page.
type LoginViewModel struct {
	PageData
	UserName  string
	ReturnURL string
	Error     string
}

// ErrorViewModel backs the error page.
type ErrorViewModel struct {
	PageData
	Status    int
	Message   string
	RequestID string
}
