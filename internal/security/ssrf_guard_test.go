package security

import (
	"testing"
	"time"
)

func TestValidateURL(t *testing.T) {
	guard := NewSSRFGuard()

	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{
			name:    "正常なhttps URL",
			url:     "https://lh3.googleusercontent.com/a/photo.jpg",
			wantErr: false,
		},
		{
			name:    "空URL",
			url:     "",
			wantErr: true,
		},
		{
			name:    "httpスキームは不許可",
			url:     "http://example.com/photo.jpg",
			wantErr: true,
		},
		{
			name:    "fileスキームは不許可",
			url:     "file:///etc/passwd",
			wantErr: true,
		},
		{
			name:    "localhost",
			url:     "https://localhost/photo.jpg",
			wantErr: true,
		},
		{
			name:    "ループバックIP",
			url:     "https://127.0.0.1/photo.jpg",
			wantErr: true,
		},
		{
			name:    "プライベートIP 10系",
			url:     "https://10.0.0.5/photo.jpg",
			wantErr: true,
		},
		{
			name:    "プライベートIP 192.168系",
			url:     "https://192.168.1.1/photo.jpg",
			wantErr: true,
		},
		{
			name:    "クラウドメタデータIP",
			url:     "https://169.254.169.254/latest/meta-data/",
			wantErr: true,
		},
		{
			name:    "IPv6ループバック",
			url:     "https://[::1]/photo.jpg",
			wantErr: true,
		},
		{
			name:    "グローバルIP",
			url:     "https://142.250.196.100/photo.jpg",
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := guard.ValidateURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
			}
		})
	}
}

func TestNewSafeClient_ReturnsClient(t *testing.T) {
	guard := NewSSRFGuard()

	client := guard.NewSafeClient(5 * time.Second)
	if client == nil {
		t.Fatal("expected non-nil HTTP client")
	}
}

var _ SSRFGuardService = (*ssrfGuard)(nil)
