package datatable

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"sort"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"
)

var (
	// ErrSubmitInFlight is returned when Submit is called while a previous
	// submission has not finished
	ErrSubmitInFlight = errors.New("a submission is already in progress")
	// ErrDialogClosed is returned when Submit is called on a closed dialog
	ErrDialogClosed = errors.New("form dialog is not open")
	// ErrInvalidForm is returned when client-side validation fails
	ErrInvalidForm = errors.New("form has invalid fields")
)

// SavedMessage is the success notification for a create or update
const SavedMessage = "Data saved successfully"

// Intent says whether a dialog creates a record or updates one. It is
// fixed when the dialog opens and never inferred from the form values.
type Intent struct {
	update bool
	id     int64
}

// CreateIntent targets the collection endpoint
func CreateIntent() Intent {
	return Intent{}
}

// UpdateIntent targets the record with the given id
func UpdateIntent(id int64) Intent {
	return Intent{update: true, id: id}
}

// IsUpdate reports whether the intent is an update
func (i Intent) IsUpdate() bool {
	return i.update
}

// ID returns the record id of an update intent
func (i Intent) ID() (int64, bool) {
	return i.id, i.update
}

func (i Intent) String() string {
	if i.update {
		return fmt.Sprintf("update(%d)", i.id)
	}
	return "create"
}

// ============================================================================
// Schema
// ============================================================================

// Rule checks one field value and returns a message when it fails
type Rule func(value string) string

// Required fails on blank values
func Required(message string) Rule {
	return func(value string) string {
		if strings.TrimSpace(value) == "" {
			return message
		}
		return ""
	}
}

// Email fails unless value is a bare email address
func Email(message string) Rule {
	return func(value string) string {
		value = strings.TrimSpace(value)
		addr, err := mail.ParseAddress(value)
		if err != nil || addr.Address != value {
			return message
		}
		return ""
	}
}

// MinLength fails when value has fewer than n characters
func MinLength(n int, message string) Rule {
	return func(value string) string {
		if utf8.RuneCountInString(value) < n {
			return message
		}
		return ""
	}
}

// MaxLength fails when value has more than n characters
func MaxLength(n int, message string) Rule {
	return func(value string) string {
		if utf8.RuneCountInString(value) > n {
			return message
		}
		return ""
	}
}

// Optional applies rules only when value is not blank
func Optional(rules ...Rule) Rule {
	return func(value string) string {
		if strings.TrimSpace(value) == "" {
			return ""
		}
		for _, rule := range rules {
			if msg := rule(value); msg != "" {
				return msg
			}
		}
		return ""
	}
}

// Schema is an ordered set of per-field rules
type Schema struct {
	fields []string
	rules  map[string][]Rule
}

// NewSchema returns an empty schema
func NewSchema() *Schema {
	return &Schema{rules: make(map[string][]Rule)}
}

// Field appends rules for field and returns the schema for chaining
func (s *Schema) Field(field string, rules ...Rule) *Schema {
	if _, ok := s.rules[field]; !ok {
		s.fields = append(s.fields, field)
	}
	s.rules[field] = append(s.rules[field], rules...)
	return s
}

// Validate returns the first failing message per field
func (s *Schema) Validate(values map[string]string) map[string]string {
	if s == nil {
		return nil
	}
	var errs map[string]string
	for _, field := range s.fields {
		for _, rule := range s.rules[field] {
			if msg := rule(values[field]); msg != "" {
				if errs == nil {
					errs = make(map[string]string)
				}
				errs[field] = msg
				break
			}
		}
	}
	return errs
}

// ============================================================================
// Form Dialog
// ============================================================================

// Origin says where a field error came from
type Origin string

const (
	OriginClient Origin = "client"
	OriginServer Origin = "server"
)

// FieldError is an error shown beside a form field
type FieldError struct {
	Message string
	Origin  Origin
}

// Saver persists records of one collection. *Resource satisfies it.
type Saver[T any] interface {
	Endpoint() string
	Create(ctx context.Context, body interface{}) (*T, error)
	Update(ctx context.Context, id int64, body interface{}) (*T, error)
}

// FormConfig holds the dependencies of a FormDialog
type FormConfig[T any] struct {
	Saver Saver[T]
	// Schema validates create submissions, and updates too unless
	// UpdateSchema is set
	Schema       *Schema
	UpdateSchema *Schema
	// Values converts a record into form values when editing
	Values func(rec T) map[string]string
	// Encode builds the request body. The default sends the form values
	// as a JSON object.
	Encode     func(values map[string]string) interface{}
	Collection Refresher
	Notifier   Notifier
	Logger     *slog.Logger
}

// FormDialog is the modal create/edit form of one collection
type FormDialog[T any] struct {
	cfg      FormConfig[T]
	notifier Notifier
	logger   *slog.Logger

	mu         sync.Mutex
	open       bool
	gen        uint64
	intent     Intent
	defaults   map[string]string
	values     map[string]string
	errors     map[string]FieldError
	submitting bool
}

// NewFormDialog creates a closed dialog
func NewFormDialog[T any](cfg FormConfig[T]) *FormDialog[T] {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &FormDialog[T]{
		cfg:      cfg,
		notifier: notifierOrDiscard(cfg.Notifier),
		logger:   logger,
	}
}

// OpenCreate opens the dialog reset to defaults. No identifier is set.
func (d *FormDialog[T]) OpenCreate(defaults map[string]string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.gen++
	d.open = true
	d.intent = CreateIntent()
	d.defaults = copyValues(defaults)
	delete(d.defaults, "id")
	d.values = copyValues(d.defaults)
	d.errors = nil
	d.submitting = false
}

// OpenEdit opens the dialog reset to rec's current values, including its
// identifier
func (d *FormDialog[T]) OpenEdit(id int64, rec T) {
	var values map[string]string
	if d.cfg.Values != nil {
		values = d.cfg.Values(rec)
	}
	values = copyValues(values)
	values["id"] = strconv.FormatInt(id, 10)

	d.mu.Lock()
	defer d.mu.Unlock()

	d.gen++
	d.open = true
	d.intent = UpdateIntent(id)
	d.defaults = copyValues(values)
	d.values = copyValues(values)
	d.errors = nil
	d.submitting = false
}

// Close hides the dialog and resets it
func (d *FormDialog[T]) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closeLocked()
}

func (d *FormDialog[T]) closeLocked() {
	d.gen++
	d.open = false
	d.values = copyValues(d.defaults)
	d.errors = nil
	d.submitting = false
}

// Submit validates values and creates or updates according to the intent
// the dialog was opened with. Client-side failures return ErrInvalidForm
// without a request; server validation failures return *ValidationError
// and keep the dialog open.
func (d *FormDialog[T]) Submit(ctx context.Context, values map[string]string) (*T, error) {
	d.mu.Lock()
	if !d.open {
		d.mu.Unlock()
		return nil, ErrDialogClosed
	}
	if d.submitting {
		d.mu.Unlock()
		return nil, ErrSubmitInFlight
	}

	merged := copyValues(d.values)
	for k, v := range values {
		if k != "id" {
			merged[k] = v
		}
	}
	d.values = merged

	schema := d.cfg.Schema
	if d.intent.IsUpdate() && d.cfg.UpdateSchema != nil {
		schema = d.cfg.UpdateSchema
	}
	if errs := schema.Validate(merged); len(errs) > 0 {
		d.errors = make(map[string]FieldError, len(errs))
		for field, msg := range errs {
			d.errors[field] = FieldError{Message: msg, Origin: OriginClient}
		}
		d.mu.Unlock()
		return nil, ErrInvalidForm
	}

	d.errors = nil
	d.submitting = true
	gen := d.gen
	intent := d.intent
	body := d.encode(merged)
	d.mu.Unlock()

	var rec *T
	var err error
	if id, ok := intent.ID(); ok {
		rec, err = d.cfg.Saver.Update(ctx, id, body)
	} else {
		rec, err = d.cfg.Saver.Create(ctx, body)
	}

	d.mu.Lock()
	current := gen == d.gen
	if current {
		d.submitting = false
	}
	if err != nil {
		var valErr *ValidationError
		if current && errors.As(err, &valErr) {
			d.errors = make(map[string]FieldError)
			for field, msg := range valErr.FieldErrors() {
				d.errors[field] = FieldError{Message: msg, Origin: OriginServer}
			}
		}
		d.mu.Unlock()

		d.logger.Debug("form submit failed",
			slog.String("endpoint", d.cfg.Saver.Endpoint()),
			slog.String("intent", intent.String()),
			slog.String("error", err.Error()))
		d.notifier.Notify(Notification{Level: LevelError, Message: errorMessage(err)})
		return nil, err
	}
	if current {
		d.closeLocked()
	}
	d.mu.Unlock()

	d.notifier.Notify(Notification{Level: LevelSuccess, Message: SavedMessage})
	if d.cfg.Collection != nil {
		if err := d.cfg.Collection.Refresh(ctx); err != nil {
			d.logger.Warn("refresh after save failed", slog.String("error", err.Error()))
		}
	}
	return rec, nil
}

// encode builds the request body. The identifier travels in the URL only.
func (d *FormDialog[T]) encode(values map[string]string) interface{} {
	body := copyValues(values)
	delete(body, "id")
	if d.cfg.Encode != nil {
		return d.cfg.Encode(body)
	}
	return body
}

// IsOpen reports whether the dialog is shown
func (d *FormDialog[T]) IsOpen() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.open
}

// Intent returns the intent the dialog was opened with
func (d *FormDialog[T]) Intent() Intent {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.intent
}

// Title is the dialog heading
func (d *FormDialog[T]) Title() string {
	if d.Intent().IsUpdate() {
		return "Update Data"
	}
	return "Create Data"
}

// Submitting reports whether a request is in flight. Renderers disable
// the submit control while it is true.
func (d *FormDialog[T]) Submitting() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.submitting
}

// Values returns the current form values
func (d *FormDialog[T]) Values() map[string]string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return copyValues(d.values)
}

// Errors returns the field errors currently shown
func (d *FormDialog[T]) Errors() map[string]FieldError {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make(map[string]FieldError, len(d.errors))
	for k, v := range d.errors {
		out[k] = v
	}
	return out
}

// ErrorFor returns the message shown beside field, if any
func (d *FormDialog[T]) ErrorFor(field string) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.errors[field].Message
}

// ErrorFields returns the names of fields with errors in sorted order
func (d *FormDialog[T]) ErrorFields() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	fields := make([]string, 0, len(d.errors))
	for k := range d.errors {
		fields = append(fields, k)
	}
	sort.Strings(fields)
	return fields
}

func copyValues(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
