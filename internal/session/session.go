// Package session owns the state of one dashboard user: the calculator history and
// the current batch table.
package session

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/KaramelBytes/gymbmi/internal/generator"
	"github.com/KaramelBytes/gymbmi/internal/parser"
	"github.com/KaramelBytes/gymbmi/internal/record"
)

// Quick calculator bounds.
const (
	MinHeightM  = 0.5
	MaxHeightM  = 2.5
	MinWeightKg = 10.0
	MaxWeightKg = 350.0
	MinAge      = 0
	MaxAge      = 120
)

// InputError rejects a calculator entry outside the accepted bounds.
type InputError struct {
	Field    string
	Value    string
	Min, Max float64
}

func (e *InputError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s is required (%g–%g)", e.Field, e.Min, e.Max)
	}
	return fmt.Sprintf("%s %s is out of range (%g–%g)", e.Field, e.Value, e.Min, e.Max)
}

// SourceKind tags where the dashboard table comes from.
type SourceKind int

const (
	SourceNone SourceKind = iota
	SourceHistory
	SourceUpload
	SourceSynthetic
)

func (k SourceKind) String() string {
	switch k {
	case SourceHistory:
		return "history"
	case SourceUpload:
		return "upload"
	case SourceSynthetic:
		return "synthetic"
	}
	return "none"
}

// Selection is the table chosen to drive the dashboard for one interaction.
type Selection struct {
	Kind  SourceKind
	Table *record.Table
}

// Select applies the precedence synthetic > upload > history. A nil table is
// absent; history only counts when it has rows.
func Select(generated, uploaded, history *record.Table) Selection {
	switch {
	case generated != nil:
		return Selection{Kind: SourceSynthetic, Table: generated}
	case uploaded != nil:
		return Selection{Kind: SourceUpload, Table: uploaded}
	case !history.Empty():
		return Selection{Kind: SourceHistory, Table: history}
	}
	return Selection{Kind: SourceNone}
}

// Session is one user's state. It is not safe for concurrent use.
type Session struct {
	ID        string
	CreatedAt time.Time

	history   History
	batch     *record.Table
	batchKind SourceKind

	// ParseOptions applies to uploads.
	ParseOptions parser.Options

	now func() time.Time
}

// New starts an empty session.
func New() *Session {
	s := &Session{
		ID:           uuid.NewString(),
		ParseOptions: parser.DefaultOptions(),
		now:          time.Now,
	}
	s.CreatedAt = s.now()
	slog.Debug("session started", "session", s.ID)
	return s
}

// History returns the session history.
func (s *Session) History() *History { return &s.history }

// Batch returns the current batch table, or nil.
func (s *Session) Batch() *record.Table { return s.batch }

// Calculate validates a quick calculator entry, derives it and appends it to the
// history. On error the history is unchanged.
func (s *Session) Calculate(in record.Input) (record.Person, error) {
	if err := ValidateInput(in); err != nil {
		return record.Person{}, err
	}
	p := record.New(in)
	p.ID = uuid.NewString()
	p.RecordedAt = s.now().UTC()
	s.history.Append(p)
	slog.Debug("calculated", "session", s.ID, "bmi", p.BMI.String(), "category", p.Category)
	return p, nil
}

// ValidateInput checks a quick calculator entry against the calculator bounds.
func ValidateInput(in record.Input) error {
	if !in.HeightM.Valid || in.HeightM.Value < MinHeightM || in.HeightM.Value > MaxHeightM {
		return &InputError{Field: record.ColHeight, Value: in.HeightM.String(), Min: MinHeightM, Max: MaxHeightM}
	}
	if !in.WeightKg.Valid || in.WeightKg.Value < MinWeightKg || in.WeightKg.Value > MaxWeightKg {
		return &InputError{Field: record.ColWeight, Value: in.WeightKg.String(), Min: MinWeightKg, Max: MaxWeightKg}
	}
	if in.Age != nil && (*in.Age < MinAge || *in.Age > MaxAge) {
		return &InputError{Field: record.ColAge, Value: fmt.Sprint(*in.Age), Min: MinAge, Max: MaxAge}
	}
	return nil
}

// Upload parses a batch table and makes it the current batch. A failed upload
// leaves no batch, so the dashboard falls back to history.
func (s *Session) Upload(name string, r io.Reader) (*record.Table, error) {
	tbl, err := parser.Parse(name, r, s.ParseOptions)
	if err != nil {
		s.batch, s.batchKind = nil, SourceNone
		slog.Warn("upload rejected", "session", s.ID, "file", name, "error", err)
		return nil, err
	}
	s.batch, s.batchKind = tbl, SourceUpload
	slog.Info("upload loaded", "session", s.ID, "file", name, "rows", tbl.Len())
	return tbl, nil
}

// Generate replaces the batch with synthetic data.
func (s *Session) Generate(opt generator.Options) (*record.Table, error) {
	tbl, err := generator.Generate(opt)
	if err != nil {
		return nil, err
	}
	s.batch, s.batchKind = tbl, SourceSynthetic
	slog.Info("demo data generated", "session", s.ID, "rows", tbl.Len())
	return tbl, nil
}

// Interaction carries the batch actions triggered together by one user event.
type Interaction struct {
	// Generate requests synthetic data when non-nil.
	Generate *generator.Options
	// Upload is read as a table named UploadName when non-nil.
	UploadName string
	Upload     io.Reader
}

// Interact runs the actions of one event and selects the dashboard source once.
// Errors are returned alongside the selection that still applies.
func (s *Session) Interact(in Interaction) (Selection, error) {
	if in.Generate == nil && in.Upload == nil {
		return s.Active(), nil
	}
	var errs []error
	var uploaded, generated *record.Table
	if in.Upload != nil {
		t, err := s.Upload(in.UploadName, in.Upload)
		if err != nil {
			errs = append(errs, err)
		}
		uploaded = t
	}
	if in.Generate != nil {
		t, err := s.Generate(*in.Generate)
		if err != nil {
			errs = append(errs, err)
		}
		generated = t
	}
	return Select(generated, uploaded, s.history.Table()), errors.Join(errs...)
}

// Active returns the source for an event without batch actions: the current batch
// when there is one, otherwise the history.
func (s *Session) Active() Selection {
	if s.batch != nil {
		return Selection{Kind: s.batchKind, Table: s.batch}
	}
	return Select(nil, nil, s.history.Table())
}

// Close ends the session, dropping history and batch.
func (s *Session) Close() {
	s.history.Clear()
	s.batch, s.batchKind = nil, SourceNone
	slog.Debug("session closed", "session", s.ID)
}
