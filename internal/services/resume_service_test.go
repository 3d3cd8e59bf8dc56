package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markdave123-py/Redacta/internal/core/ingestion_engine"
	"github.com/markdave123-py/Redacta/internal/core/pdfdoc"
	"github.com/markdave123-py/Redacta/internal/models"
	"github.com/markdave123-py/Redacta/internal/testutil/memstore"
	"github.com/markdave123-py/Redacta/internal/testutil/pdffixture"
)

type fakeIngestor struct {
	ingestion_engine.Ingestor
	created []string
	err     error
}

func (f *fakeIngestor) ResumeCreated(_ context.Context, uuid string) error {
	f.created = append(f.created, uuid)
	return f.err
}

func newService(t *testing.T) (*ResumeService, *memstore.DB, *memstore.Objects, *fakeIngestor) {
	t.Helper()
	db, objs, ing := memstore.NewDB(), memstore.NewObjects(), &fakeIngestor{}
	svc := NewResumeService(db, objs, ing, nil)
	svc.newUUID = func() string { return "11111111-2222-3333-4444-555555555555" }
	return svc, db, objs, ing
}

func TestCreate(t *testing.T) {
	svc, db, objs, ing := newService(t)
	doc := pdffixture.Build(t, pdffixture.Spec{Width: 595, Height: 842, Pages: []pdffixture.Page{{
		Texts: []pdffixture.Text{{X: 72, Y: 700, S: "Jane   Doe"}},
	}}})

	r, err := svc.Create(context.Background(), "prospect-1", doc)
	require.NoError(t, err)
	assert.Equal(t, "11111111-2222-3333-4444-555555555555", r.UUID)
	assert.Equal(t, "prospect-1", r.ProspectUUID)
	assert.Equal(t, "11111111-2222-3333-4444-555555555555.pdf", r.Link)
	assert.Equal(t, "Jane Doe", r.Text)
	assert.InDelta(t, 595, r.Width, 1e-6)
	assert.InDelta(t, 842, r.Height, 1e-6)
	assert.NotZero(t, r.ID)
	assert.NotNil(t, r.TextCoordinates)

	stored, err := db.GetResumeByUUID(context.Background(), r.UUID)
	require.NoError(t, err)
	assert.False(t, stored.SkipRedaction)
	assert.Equal(t, []string{r.Link}, objs.Keys())
	assert.Equal(t, []string{r.UUID}, ing.created)
}

func TestCreateRejectsBadInput(t *testing.T) {
	svc, _, objs, ing := newService(t)

	_, err := svc.Create(context.Background(), "p", nil)
	assert.ErrorIs(t, err, ErrEmptyResume)

	_, err = svc.Create(context.Background(), "p", []byte("definitely not a pdf"))
	assert.ErrorIs(t, err, pdfdoc.ErrMalformedDocument)

	assert.Empty(t, objs.Keys())
	assert.Empty(t, ing.created)
}

func TestCreateStorageFailure(t *testing.T) {
	svc, _, objs, ing := newService(t)
	objs.WriteErr = errors.New("bucket gone")

	_, err := svc.Create(context.Background(), "p", pdffixture.SingleLine(t, pdffixture.Text{X: 72, Y: 700, S: "Hi"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bucket gone")
	assert.Empty(t, ing.created)
}

func TestCreateKeepsResumeWhenQueueFails(t *testing.T) {
	svc, db, _, ing := newService(t)
	ing.err = context.DeadlineExceeded

	r, err := svc.Create(context.Background(), "p", pdffixture.SingleLine(t, pdffixture.Text{X: 72, Y: 700, S: "Hi"}))
	require.NoError(t, err)
	_, err = db.GetResumeByUUID(context.Background(), r.UUID)
	require.NoError(t, err)
}

func TestGet(t *testing.T) {
	svc, db, _, _ := newService(t)
	ctx := context.Background()
	r := &models.Resume{UUID: "r1", Link: "r1.pdf", Text: "t"}
	require.NoError(t, db.CreateResume(ctx, r))
	require.NoError(t, db.ReplaceTextCoordinates(ctx, r.ID, false, []models.WordCoordinate{
		{Text: "golang", X0: 1, Y0: 2, X1: 3, Y1: 4},
		{Text: "python", X0: 5, Y0: 6, X1: 7, Y1: 8},
		{Text: "acme corp", X0: 9, Y0: 10, X1: 11, Y1: 12},
	}))

	got, err := svc.Get(ctx, "r1", nil)
	require.NoError(t, err)
	assert.Empty(t, got.TextCoordinates)
	assert.NotNil(t, got.TextCoordinates)

	kw := "  Golang, acme!  "
	got, err = svc.Get(ctx, "r1", &kw)
	require.NoError(t, err)
	require.Len(t, got.TextCoordinates, 2)
	assert.Equal(t, "golang", got.TextCoordinates[0].Text)
	assert.Equal(t, "acme corp", got.TextCoordinates[1].Text)

	blank := " ?! "
	got, err = svc.Get(ctx, "r1", &blank)
	require.NoError(t, err)
	assert.Empty(t, got.TextCoordinates)

	_, err = svc.Get(ctx, "missing", nil)
	assert.ErrorIs(t, err, models.ErrResumeNotFound)
}

func TestSanitizeKeywords(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"golang", "golang"},
		{"go  python\tjava", "go|python|java"},
		{"c++ & rust's", "c|rusts"},
		{"a|b", "a|b"},
		{"  ", ""},
		{"São Paulo", "São|Paulo"},
		{"drop; table--", "drop|table"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeKeywords(tt.in), tt.in)
	}
}
