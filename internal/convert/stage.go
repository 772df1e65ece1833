package convert

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrNoMesh means a bundle holds no OBJ document.
var ErrNoMesh = errors.New("bundle contains no .obj mesh")

var zipMagic = []byte("PK\x03\x04")

// maxBundleFile bounds any single extracted file.
const maxBundleFile = 1 << 30

// Stage writes bundle into dir and returns a file:// URL of the mesh to
// load. A zip bundle is extracted with its material library and textures;
// anything else is taken to be a bare OBJ document.
func Stage(bundle []byte, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating staging dir: %w", err)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}

	var meshPath string
	if bytes.HasPrefix(bundle, zipMagic) {
		meshPath, err = extract(bundle, abs)
	} else {
		meshPath = filepath.Join(abs, "mesh.obj")
		err = os.WriteFile(meshPath, bundle, 0o644)
	}
	if err != nil {
		return "", err
	}
	return FileURL(meshPath), nil
}

// FileURL returns the file:// URL for an absolute path.
func FileURL(path string) string {
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(path)}).String()
}

// extract unpacks a zip bundle and returns the path of its mesh: the
// shallowest .obj, ties broken by name.
func extract(bundle []byte, dir string) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(bundle), int64(len(bundle)))
	if err != nil {
		return "", fmt.Errorf("reading bundle: %w", err)
	}

	var meshes []string
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		target, err := safeJoin(dir, f.Name)
		if err != nil {
			return "", err
		}
		if err := writeEntry(f, target); err != nil {
			return "", err
		}
		if strings.EqualFold(filepath.Ext(target), ".obj") {
			meshes = append(meshes, target)
		}
	}
	if len(meshes) == 0 {
		return "", ErrNoMesh
	}
	sort.Slice(meshes, func(i, j int) bool {
		di, dj := strings.Count(meshes[i], string(filepath.Separator)), strings.Count(meshes[j], string(filepath.Separator))
		if di != dj {
			return di < dj
		}
		return meshes[i] < meshes[j]
	})
	return meshes[0], nil
}

// safeJoin rejects entries that would land outside dir.
func safeJoin(dir, name string) (string, error) {
	target := filepath.Join(dir, filepath.FromSlash(name))
	rel, err := filepath.Rel(dir, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("bundle entry %q escapes the staging dir", name)
	}
	return target, nil
}

func writeEntry(f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("opening %s: %w", f.Name, err)
	}
	defer rc.Close()

	out, err := os.Create(target)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, io.LimitReader(rc, maxBundleFile)); err != nil {
		out.Close()
		return fmt.Errorf("extracting %s: %w", f.Name, err)
	}
	return out.Close()
}
