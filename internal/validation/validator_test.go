package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateMediaURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{
			name:    "valid https URL",
			input:   "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
			wantErr: false,
		},
		{
			name:    "valid http URL",
			input:   "http://vimeo.com/123",
			wantErr: false,
		},
		{
			name:    "empty",
			input:   "",
			wantErr: true,
		},
		{
			name:    "invalid scheme",
			input:   "ftp://example.com/video.mp4",
			wantErr: true,
		},
		{
			name:    "missing host",
			input:   "https:///path",
			wantErr: true,
		},
		{
			name:    "not a URL",
			input:   "just some words",
			wantErr: true,
		},
		{
			name:    "localhost not allowed",
			input:   "http://localhost:8080",
			wantErr: true,
		},
		{
			name:    "private IP not allowed",
			input:   "http://192.168.1.10/v.mp4",
			wantErr: true,
		},
		{
			name:    "loopback IP not allowed",
			input:   "https://127.0.0.1",
			wantErr: true,
		},
		{
			name:    "metadata endpoint not allowed",
			input:   "http://169.254.169.254/latest",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateMediaURL(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "plain file", input: "Some_Video.mp4", wantErr: false},
		{name: "playlist directory", input: "My_Playlist", wantErr: false},
		{name: "empty", input: "", wantErr: true},
		{name: "dot", input: ".", wantErr: true},
		{name: "parent", input: "..", wantErr: true},
		{name: "nested path", input: "a/b.mp4", wantErr: true},
		{name: "escape", input: "../etc/passwd", wantErr: true},
		{name: "backslash", input: "a\\b", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

type sample struct {
	URL  string `validate:"required,media_url"`
	Name string `validate:"omitempty,safe_name"`
}

func TestNew_StructTags(t *testing.T) {
	v := New()

	assert.NoError(t, v.Struct(sample{URL: "https://example.com/v"}))
	assert.NoError(t, v.Struct(sample{URL: "https://example.com/v", Name: "clip.mp3"}))
	assert.Error(t, v.Struct(sample{URL: "https://example.com/v", Name: "../x"}))
	assert.Error(t, v.Struct(sample{}))
}
