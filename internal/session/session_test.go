package session

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/gymbmi/internal/bmi"
	"github.com/KaramelBytes/gymbmi/internal/generator"
	"github.com/KaramelBytes/gymbmi/internal/parser"
	"github.com/KaramelBytes/gymbmi/internal/record"
)

func entry(h, w float64) record.Input {
	return record.Input{Name: "Ana", Sex: record.SexFemale, Race: record.RaceMixed, Age: record.IntPtr(30), HeightM: bmi.Known(h), WeightKg: bmi.Known(w)}
}

func seed(v int64) *int64 { return &v }

func TestCalculateAppendsToHistory(t *testing.T) {
	s := New()
	p, err := s.Calculate(entry(1.70, 70))
	require.NoError(t, err)
	assert.Equal(t, bmi.Known(24.22), p.BMI)
	assert.Equal(t, bmi.NormalWeight, p.Category)
	assert.NotEmpty(t, p.ID)
	assert.False(t, p.RecordedAt.IsZero())

	q, err := s.Calculate(entry(1.60, 120))
	require.NoError(t, err)
	assert.Equal(t, bmi.Known(46.88), q.BMI)
	assert.Equal(t, bmi.ObesityIII, q.Category)

	rows := s.History().Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, p.ID, rows[0].ID)
	assert.Equal(t, q.ID, rows[1].ID)
	assert.NotEqual(t, p.ID, q.ID)

	out, err := s.History().Table().CSV()
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	assert.Equal(t, "name,sex,race_or_ethnicity,age,height_m,weight_kg,bmi,category", lines[0])
	assert.Equal(t, "Ana,Female,Mixed,30,1.7,70,24.22,Normal weight", lines[1])
}

func TestCalculateRejectsOutOfRange(t *testing.T) {
	s := New()
	cases := []record.Input{
		entry(0.3, 70),
		entry(2.6, 70),
		entry(1.7, 5),
		entry(1.7, 400),
		{HeightM: bmi.Known(1.7)},
		{HeightM: bmi.Known(1.7), WeightKg: bmi.Known(70), Age: record.IntPtr(130)},
	}
	for _, in := range cases {
		_, err := s.Calculate(in)
		var ie *InputError
		require.True(t, errors.As(err, &ie), "%+v", in)
	}
	assert.Equal(t, 0, s.History().Len())
}

func TestHistoryRowsIsACopy(t *testing.T) {
	s := New()
	_, err := s.Calculate(entry(1.7, 70))
	require.NoError(t, err)
	rows := s.History().Rows()
	rows[0].Name = "changed"
	assert.Equal(t, "Ana", s.History().Rows()[0].Name)
}

func TestSelectPrecedence(t *testing.T) {
	gen := record.NewTable("demo", nil, nil)
	up := record.NewTable("up.csv", nil, nil)
	hist := record.NewTable("history", nil, []record.Person{record.New(entry(1.7, 70))})

	assert.Equal(t, SourceSynthetic, Select(gen, up, hist).Kind)
	assert.Equal(t, SourceUpload, Select(nil, up, hist).Kind)
	assert.Equal(t, SourceHistory, Select(nil, nil, hist).Kind)
	assert.Equal(t, SourceNone, Select(nil, nil, record.NewTable("history", nil, nil)).Kind)
	assert.Equal(t, SourceNone, Select(nil, nil, nil).Kind)
	assert.Equal(t, "synthetic", SourceSynthetic.String())
}

func TestInteractGenerateBeatsUpload(t *testing.T) {
	s := New()
	_, err := s.Calculate(entry(1.7, 70))
	require.NoError(t, err)

	sel, err := s.Interact(Interaction{
		Generate:   &generator.Options{Count: 5, Seed: seed(1)},
		UploadName: "up.csv",
		Upload:     strings.NewReader("height_m,weight_kg\n1.8,80\n"),
	})
	require.NoError(t, err)
	assert.Equal(t, SourceSynthetic, sel.Kind)
	assert.Equal(t, 5, sel.Table.Len())

	// The batch persists across events without actions.
	assert.Equal(t, SourceSynthetic, s.Active().Kind)
	again, err := s.Interact(Interaction{})
	require.NoError(t, err)
	assert.Same(t, sel.Table, again.Table)
}

func TestInteractUploadReplacesBatch(t *testing.T) {
	s := New()
	_, err := s.Generate(generator.DefaultOptions())
	require.NoError(t, err)
	sel, err := s.Interact(Interaction{UploadName: "up.csv", Upload: strings.NewReader("height_m,weight_kg\n1.8,80\n")})
	require.NoError(t, err)
	assert.Equal(t, SourceUpload, sel.Kind)
	assert.Equal(t, 1, sel.Table.Len())
	assert.Same(t, sel.Table, s.Batch())
}

func TestFailedUploadFallsBackToHistory(t *testing.T) {
	s := New()
	_, err := s.Calculate(entry(1.7, 70))
	require.NoError(t, err)
	_, err = s.Generate(generator.DefaultOptions())
	require.NoError(t, err)

	sel, err := s.Interact(Interaction{UploadName: "bad.csv", Upload: strings.NewReader("name,weight_kg\nAna,70\n")})
	var verr *parser.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, SourceHistory, sel.Kind)
	assert.Nil(t, s.Batch())
	assert.Equal(t, 1, s.History().Len())
}

func TestCloseClearsState(t *testing.T) {
	s := New()
	_, err := s.Calculate(entry(1.7, 70))
	require.NoError(t, err)
	_, err = s.Generate(generator.DefaultOptions())
	require.NoError(t, err)
	s.Close()
	assert.Equal(t, 0, s.History().Len())
	assert.Equal(t, SourceNone, s.Active().Kind)
}
