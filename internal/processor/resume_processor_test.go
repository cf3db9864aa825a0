package processor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smart-resume-go/internal/types"
)

const stubResumeText = `John Michael Smith
Senior Software Engineer
Email: john.smith@example.com
Phone: +1-415-555-0100

SUMMARY:
Full stack developer with 8 years of experience building web applications.

SKILLS:
JavaScript, TypeScript, React, Node.js, Express, MongoDB, PostgreSQL, Docker, AWS, Git

EDUCATION:
Bachelor of Technology in Computer Science
`

type stubExtractor struct {
	text  string
	pages int
	err   error
}

func (s *stubExtractor) Extract(ctx context.Context, data []byte, uri string) (*types.ExtractedText, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &types.ExtractedText{
		Text:   s.text,
		Method: types.MethodStructural,
		Pages:  s.pages,
	}, nil
}

func pdfBytes(size int) []byte {
	data := make([]byte, size)
	copy(data, "%PDF-1.7")
	return data
}

func TestProcessUploadFullPipeline(t *testing.T) {
	p := NewResumeProcessor(&stubExtractor{text: stubResumeText, pages: 2}, nil)

	resp, err := p.ProcessUpload(context.Background(), "resume.pdf", pdfBytes(2048))
	require.NoError(t, err)
	require.NotNil(t, resp)

	assert.NotEmpty(t, resp.SubmissionUUID)
	assert.False(t, resp.Duplicate)

	require.NotNil(t, resp.Profile)
	assert.Equal(t, "resume.pdf", resp.Profile.Filename)
	assert.Equal(t, "John Michael Smith", resp.Profile.Name)
	assert.Equal(t, "john.smith@example.com", resp.Profile.Contact.Email)
	assert.Equal(t, 2, resp.Profile.Pages)
	assert.Equal(t, types.MethodStructural, resp.Profile.Method)
	assert.Contains(t, resp.Profile.Skills, "React")
	assert.Contains(t, resp.Profile.Skills, "Node.js")

	require.NotNil(t, resp.Analysis)
	assert.Equal(t, "Web Development", resp.Analysis.Field)
	assert.Greater(t, resp.Analysis.Score, 0)
	assert.NotEmpty(t, resp.Courses)
}

func TestProcessUploadRejectsOversizedFile(t *testing.T) {
	p := NewResumeProcessor(&stubExtractor{text: stubResumeText, pages: 1}, nil, WithMaxUploadSize(1024))

	resp, err := p.ProcessUpload(context.Background(), "big.pdf", pdfBytes(2048))
	assert.Nil(t, resp)
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestProcessUploadRejectsNonPDF(t *testing.T) {
	p := NewResumeProcessor(&stubExtractor{text: stubResumeText, pages: 1}, nil)

	resp, err := p.ProcessUpload(context.Background(), "notes.txt", []byte("plain text content"))
	assert.Nil(t, resp)
	assert.ErrorIs(t, err, ErrInvalidPDF)
}

func TestProcessUploadPropagatesExtractionFailure(t *testing.T) {
	chainErr := errors.New("所有提取方法均失败")
	p := NewResumeProcessor(&stubExtractor{err: chainErr}, nil)

	resp, err := p.ProcessUpload(context.Background(), "scan.pdf", pdfBytes(512))
	assert.Nil(t, resp)
	assert.ErrorIs(t, err, chainErr)
}

func TestProcessUploadUUIDsAreUnique(t *testing.T) {
	p := NewResumeProcessor(&stubExtractor{text: stubResumeText, pages: 1}, nil)

	first, err := p.ProcessUpload(context.Background(), "a.pdf", pdfBytes(100))
	require.NoError(t, err)
	second, err := p.ProcessUpload(context.Background(), "b.pdf", pdfBytes(100))
	require.NoError(t, err)

	assert.NotEqual(t, first.SubmissionUUID, second.SubmissionUUID)
}
