package service

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"interview_backend/internal/config"
	"interview_backend/internal/model"
	"interview_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pdfHeader = "%PDF-1.4\n%âãÏÓ\n1 0 obj\n"

func buildDocx(t *testing.T, paragraphs ...string) []byte {
	t.Helper()
	var body strings.Builder
	for _, p := range paragraphs {
		body.WriteString(`<w:p><w:r><w:t xml:space="preserve">` + p + `</w:t></w:r></w:p>`)
	}
	doc := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		body.String() + `</w:body></w:document>`

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	f, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = f.Write([]byte(doc))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func newTestResumeService(t *testing.T, gw *fakeGateway) (*ResumeService, string) {
	t.Helper()
	dir := t.TempDir()
	storage := NewStorageService(&config.StorageConfig{Type: util.StorageLocal, LocalPath: dir})
	return NewResumeService(gw, storage), dir
}

func TestParseResumeUsesGateway(t *testing.T) {
	gw := &fakeGateway{resume: &model.ResumeData{Name: "Jane Smith", Email: "jane@company.org", Text: "cv"}}
	svc, dir := newTestResumeService(t, gw)

	res, err := svc.Parse(context.Background(), "cv.pdf", []byte(pdfHeader))
	require.NoError(t, err)
	assert.Equal(t, ResumeSourceGateway, res.Source)
	assert.Equal(t, "Jane Smith", res.Name)
	require.True(t, strings.HasPrefix(res.URL, "/uploads/resumes/"))

	stored, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(strings.TrimPrefix(res.URL, "/uploads/"))))
	require.NoError(t, err)
	assert.Equal(t, pdfHeader, string(stored))
}

func TestParseResumeFallsBackToDocxExtraction(t *testing.T) {
	gw := &fakeGateway{resumeErr: errors.New("gateway down")}
	svc, _ := newTestResumeService(t, gw)
	content := buildDocx(t, "Jane Smith", "Senior Engineer", "jane.smith@company.org | (555) 123-4567")

	res, err := svc.Parse(context.Background(), "cv.docx", content)
	require.NoError(t, err)
	assert.Equal(t, ResumeSourceLocal, res.Source)
	assert.Equal(t, "Jane Smith", res.Name)
	assert.Equal(t, "jane.smith@company.org", res.Email)
	assert.Equal(t, "(555) 123-4567", res.Phone)
	assert.Contains(t, res.Text, "Senior Engineer")
}

func TestParseResumePDFFallsBackToManualEntry(t *testing.T) {
	svc, _ := newTestResumeService(t, &fakeGateway{resumeErr: errors.New("gateway down")})

	res, err := svc.Parse(context.Background(), "cv.pdf", []byte(pdfHeader))
	require.NoError(t, err)
	assert.Equal(t, ResumeSourceManual, res.Source)
	assert.Equal(t, ManualResumeText, res.Text)
	assert.Empty(t, res.Name)
}

func TestParseResumeValidation(t *testing.T) {
	svc, _ := newTestResumeService(t, &fakeGateway{})
	ctx := context.Background()

	_, err := svc.Parse(ctx, "cv.txt", []byte("plain"))
	assert.ErrorIs(t, err, util.ErrInvalidFileType)

	_, err = svc.Parse(ctx, "cv.pdf", []byte("not really a pdf"))
	assert.ErrorIs(t, err, util.ErrInvalidFileType)

	_, err = svc.Parse(ctx, "cv.docx", []byte(pdfHeader))
	assert.ErrorIs(t, err, util.ErrInvalidFileType)

	big := append([]byte(pdfHeader), make([]byte, util.MaxResumeBytes)...)
	_, err = svc.Parse(ctx, "cv.pdf", big)
	assert.ErrorIs(t, err, util.ErrFileTooLarge)
}

func TestExtractContactInfo(t *testing.T) {
	tests := []struct {
		name string
		text string
		want model.ResumeData
	}{
		{
			name: "three part name",
			text: "Mary Jane Watson\nmj@daily.com\n+1 555.987.6543",
			want: model.ResumeData{Name: "Mary Jane Watson", Email: "mj@daily.com", Phone: "+1 555.987.6543"},
		},
		{
			name: "middle initial",
			text: "John Q. Public\nReach me at john.public@mail.net",
			want: model.ResumeData{Name: "John Q. Public", Email: "john.public@mail.net"},
		},
		{
			name: "name on an indented line",
			text: "   \n  Ada Lovelace  \nAnalyst",
			want: model.ResumeData{Name: "Ada Lovelace"},
		},
		{
			name: "nothing recognizable",
			text: "curriculum vitae",
			want: model.ResumeData{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractContactInfo(tt.text))
		})
	}
}

func TestExtractDocxTextRejectsNonDocx(t *testing.T) {
	_, err := ExtractDocxText([]byte("nope"))
	assert.Error(t, err)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	_, _ = zw.Create("other.xml")
	require.NoError(t, zw.Close())
	_, err = ExtractDocxText(buf.Bytes())
	assert.Error(t, err)
}
