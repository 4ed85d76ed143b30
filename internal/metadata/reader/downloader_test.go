package reader_test

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gowinrt/internal/metadata/reader"
)

func packageArchive(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buffer bytes.Buffer
	archive := zip.NewWriter(&buffer)
	for name, content := range files {
		writer, err := archive.Create(name)
		require.NoError(t, err)
		_, err = writer.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, archive.Close())
	return buffer.Bytes()
}

func nugetServer(t *testing.T, versions []string, archives map[string][]byte) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	var server *httptest.Server
	mux.HandleFunc("/v3/index.json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"resources":[{"@id":"%s/search","@type":"SearchQueryService"},{"@id":"%s/flat","@type":"PackageBaseAddress/3.0.0"}]}`, server.URL, server.URL)
	})
	mux.HandleFunc("/flat/sample.contracts/index.json", func(w http.ResponseWriter, r *http.Request) {
		quoted := ""
		for i, v := range versions {
			if i > 0 {
				quoted += ","
			}
			quoted += fmt.Sprintf("%q", v)
		}
		fmt.Fprintf(w, `{"versions":[%s]}`, quoted)
	})
	for v, archive := range archives {
		content := archive
		mux.HandleFunc(fmt.Sprintf("/flat/sample.contracts/%s/sample.contracts.%s.nupkg", v, v), func(w http.ResponseWriter, r *http.Request) {
			w.Write(content)
		})
	}
	server = httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestDownload(t *testing.T) {
	archives := map[string][]byte{
		"1.2.0": packageArchive(t, map[string]string{
			"ref/netstandard2.0/Sample.Foundation.winmd": "foundation",
			"ref/netstandard2.0/Sample.Widgets.winmd":    "widgets",
			"lib/Sample.dll":                             "code",
		}),
		"2.0.0-preview": packageArchive(t, map[string]string{"Preview.winmd": "preview"}),
		"1.0.0":         packageArchive(t, map[string]string{"Old.winmd": "old"}),
	}

	tests := []struct {
		name       string
		constraint string
		want       []string
	}{
		{"newest stable", "", []string{"Sample.Foundation.winmd", "Sample.Widgets.winmd"}},
		{"constrained", "< 1.1", []string{"Old.winmd"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := nugetServer(t, []string{"1.0.0", "1.2.0", "2.0.0-preview"}, archives)
			downloader := reader.NewDownloader("Sample.Contracts", tt.constraint)
			downloader.ServiceIndex = server.URL + "/v3/index.json"
			downloader.Client = server.Client()

			output := filepath.Join(t.TempDir(), "metadata")
			written, err := downloader.Download(context.Background(), output)
			require.NoError(t, err)

			names := make([]string, 0, len(written))
			for _, file := range written {
				names = append(names, filepath.Base(file))
				_, err := os.Stat(file)
				assert.NoError(t, err)
			}
			assert.ElementsMatch(t, tt.want, names)
		})
	}
}

func TestDownloadErrors(t *testing.T) {
	archives := map[string][]byte{
		"1.0.0": packageArchive(t, map[string]string{"lib/Sample.dll": "code"}),
	}
	server := nugetServer(t, []string{"1.0.0"}, archives)

	downloader := reader.NewDownloader("sample.contracts", ">= 3.0")
	downloader.ServiceIndex = server.URL + "/v3/index.json"
	_, err := downloader.Download(context.Background(), t.TempDir())
	assert.ErrorContains(t, err, "no version")

	downloader.Constraint = "not a constraint"
	_, err = downloader.Download(context.Background(), t.TempDir())
	assert.ErrorContains(t, err, "version constraint")

	downloader.Constraint = ""
	_, err = downloader.Download(context.Background(), t.TempDir())
	assert.ErrorContains(t, err, "no .winmd files")

	downloader.ServiceIndex = server.URL + "/missing.json"
	_, err = downloader.Download(context.Background(), t.TempDir())
	assert.ErrorContains(t, err, "404")
}

func TestNewDownloaderDefaults(t *testing.T) {
	downloader := reader.NewDownloader("", "")
	assert.Equal(t, reader.DefaultPackage, downloader.Package)
	assert.Equal(t, reader.DefaultServiceIndex, downloader.ServiceIndex)
}
