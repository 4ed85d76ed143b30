package reader

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hashicorp/go-version"
	"go.uber.org/zap"
)

const (
	DefaultServiceIndex = "https://api.nuget.org/v3/index.json"
	DefaultPackage      = "microsoft.windows.sdk.contracts"
)

// Downloader fetches a nuget package and extracts the WinMD files it carries
type Downloader struct {
	Client       *http.Client
	ServiceIndex string
	Package      string
	// Constraint limits the accepted versions, e.g. ">= 10.0.22621, < 10.0.26100".
	// Empty picks the newest stable version.
	Constraint string
}

func NewDownloader(packageName, constraint string) *Downloader {
	if packageName == "" {
		packageName = DefaultPackage
	}
	return &Downloader{
		Client:       http.DefaultClient,
		ServiceIndex: DefaultServiceIndex,
		Package:      strings.ToLower(packageName),
		Constraint:   constraint,
	}
}

// Download extracts every .winmd file of the selected package version into outputDir
// and returns the written paths.
func (d *Downloader) Download(ctx context.Context, outputDir string) ([]string, error) {
	baseAddress, err := d.baseAddress(ctx)
	if err != nil {
		return nil, err
	}

	selected, err := d.selectVersion(ctx, baseAddress)
	if err != nil {
		return nil, err
	}
	Logger().Info("downloading metadata package",
		zap.String("package", d.Package),
		zap.String("version", selected))

	nugetBytes, err := d.queryGet(ctx, fmt.Sprintf("%s%s/%s/%s.%s.nupkg", baseAddress, d.Package, selected, d.Package, selected))
	if err != nil {
		return nil, fmt.Errorf("downloading package %s %s: %w", d.Package, selected, err)
	}

	return extractMetadata(nugetBytes, outputDir)
}

func (d *Downloader) baseAddress(ctx context.Context) (string, error) {
	response, err := d.queryGet(ctx, d.ServiceIndex)
	if err != nil {
		return "", fmt.Errorf("reading service index: %w", err)
	}
	index, err := parse[nugetIndex](response)
	if err != nil {
		return "", fmt.Errorf("parsing service index: %w", err)
	}

	for _, resource := range index.Resources {
		if strings.Contains(resource.Type, "PackageBaseAddress") {
			if !strings.HasSuffix(resource.Id, "/") {
				return resource.Id + "/", nil
			}
			return resource.Id, nil
		}
	}
	return "", fmt.Errorf("service index %s has no package base address", d.ServiceIndex)
}

func (d *Downloader) selectVersion(ctx context.Context, baseAddress string) (string, error) {
	response, err := d.queryGet(ctx, fmt.Sprintf("%s%s/index.json", baseAddress, d.Package))
	if err != nil {
		return "", fmt.Errorf("listing versions of %s: %w", d.Package, err)
	}
	versions, err := parse[map[string][]string](response)
	if err != nil {
		return "", fmt.Errorf("parsing versions of %s: %w", d.Package, err)
	}

	var constraints version.Constraints
	if d.Constraint != "" {
		constraints, err = version.NewConstraint(d.Constraint)
		if err != nil {
			return "", fmt.Errorf("parsing version constraint %q: %w", d.Constraint, err)
		}
	}

	candidates := make([]*version.Version, 0, len(versions["versions"]))
	for _, versionString := range versions["versions"] {
		candidate, err := version.NewVersion(versionString)
		if err != nil {
			return "", fmt.Errorf("parsing version %s: %w", versionString, err)
		}
		if constraints == nil && candidate.Prerelease() != "" {
			continue
		}
		if constraints != nil && !constraints.Check(candidate) {
			continue
		}
		candidates = append(candidates, candidate)
	}
	if len(candidates) == 0 {
		return "", fmt.Errorf("no version of %s matches %q", d.Package, d.Constraint)
	}

	sort.Sort(version.Collection(candidates))
	return candidates[len(candidates)-1].Original(), nil
}

func extractMetadata(nugetBytes []byte, outputDir string) ([]string, error) {
	bytesReader := bytes.NewReader(nugetBytes)
	nuget, err := zip.NewReader(bytesReader, int64(bytesReader.Len()))
	if err != nil {
		return nil, fmt.Errorf("opening package archive: %w", err)
	}
	if err := os.MkdirAll(outputDir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	var written []string
	for _, file := range nuget.File {
		if !strings.EqualFold(filepath.Ext(file.Name), winMdExtension) {
			continue
		}
		target := filepath.Join(outputDir, filepath.Base(file.Name))
		if err := extractFile(file, target); err != nil {
			return written, err
		}
		written = append(written, target)
	}
	if len(written) == 0 {
		return nil, fmt.Errorf("package archive contains no %s files", winMdExtension)
	}
	return written, nil
}

func extractFile(file *zip.File, target string) error {
	reader, err := file.Open()
	if err != nil {
		return fmt.Errorf("opening %s in package archive: %w", file.Name, err)
	}
	defer reader.Close()

	metadataBytes, err := io.ReadAll(reader)
	if err != nil {
		return fmt.Errorf("reading %s from package archive: %w", file.Name, err)
	}
	if err := os.WriteFile(target, metadataBytes, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", target, err)
	}
	return nil
}

func parse[T interface{}](source []byte) (T, error) {
	var parsedBody T
	err := json.Unmarshal(source, &parsedBody)
	return parsedBody, err
}

func (d *Downloader) queryGet(ctx context.Context, url string) ([]byte, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	response, err := d.Client.Do(request)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: %s", url, response.Status)
	}
	return io.ReadAll(response.Body)
}

type nugetIndex struct {
	Resources []nugetResource `json:"resources"`
}

type nugetResource struct {
	Id   string `json:"@id"`
	Type string `json:"@type"`
}
