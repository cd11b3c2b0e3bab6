package assets

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/spaghettifunk/ember/engine/assets/loaders"
	"github.com/spaghettifunk/ember/engine/core"
	"github.com/spaghettifunk/ember/engine/renderer/metadata"
)

type AssetInfo struct {
	Path       string
	Type       AssetType
	LastLoaded time.Time
}

// AssetManager resolves asset paths against a root directory and hands them
// to the loader matching their extension.
type AssetManager struct {
	root   string
	assets map[string]AssetInfo
	mutex  sync.RWMutex

	obj    *loaders.OBJLoader
	image  *loaders.ImageLoader
	shader *loaders.ShaderLoader
	binary *loaders.BinaryLoader
}

func NewAssetManager() *AssetManager {
	return &AssetManager{
		assets: make(map[string]AssetInfo),
		obj:    &loaders.OBJLoader{},
		image:  &loaders.ImageLoader{},
		shader: &loaders.ShaderLoader{},
		binary: &loaders.BinaryLoader{},
	}
}

// Initialize indexes every known asset below root. A missing root is not an
// error: paths are then used as given.
func (am *AssetManager) Initialize(root string) error {
	am.root = root
	if _, err := os.Stat(root); os.IsNotExist(err) {
		core.LogWarn("asset directory %s does not exist", root)
		return nil
	}
	err := filepath.Walk(root, func(walkPath string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			return nil
		}
		am.index(walkPath)
		return nil
	})
	if err != nil {
		return err
	}
	core.LogDebug("indexed %d assets under %s", len(am.assets), root)
	return nil
}

func (am *AssetManager) index(path string) {
	assetType := determineAssetType(path)
	if assetType == AssetTypeNone {
		return
	}
	am.mutex.Lock()
	defer am.mutex.Unlock()
	am.assets[path] = AssetInfo{Path: path, Type: assetType}
}

// Resolve returns path unchanged when it exists, otherwise path joined to the root.
func (am *AssetManager) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) || am.root == "" {
		return path
	}
	if _, err := os.Stat(path); err == nil {
		return path
	}
	return filepath.Join(am.root, path)
}

func (am *AssetManager) touch(path string) {
	am.mutex.Lock()
	defer am.mutex.Unlock()
	info, ok := am.assets[path]
	if !ok {
		info = AssetInfo{Path: path, Type: determineAssetType(path)}
	}
	info.LastLoaded = time.Now()
	am.assets[path] = info
}

// Assets lists the indexed assets sorted by path.
func (am *AssetManager) Assets() []AssetInfo {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	out := make([]AssetInfo, 0, len(am.assets))
	for _, a := range am.assets {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

func (am *AssetManager) LoadImage(path string) (*metadata.ImageData, error) {
	path = am.Resolve(path)
	img, err := am.image.Load(path)
	if err != nil {
		return nil, err
	}
	am.touch(path)
	return img, nil
}

func (am *AssetManager) LoadMesh(path string, textures metadata.MaterialTexturePaths) (*metadata.RawMeshData, error) {
	path = am.Resolve(path)
	raw, err := am.obj.Load(path, textures)
	if err != nil {
		return nil, err
	}
	am.touch(path)
	return raw, nil
}

// LoadShader returns GLSL text, or validated SPIR-V for .spv files.
func (am *AssetManager) LoadShader(path string) ([]byte, error) {
	path = am.Resolve(path)
	var (
		data []byte
		err  error
	)
	switch determineAssetType(path) {
	case AssetTypeShaderBinary:
		data, err = am.binary.Load(path)
	case AssetTypeShaderSource:
		data, err = am.shader.Load(path)
	default:
		return nil, fmt.Errorf("%s is not a shader asset", path)
	}
	if err != nil {
		return nil, err
	}
	am.touch(path)
	return data, nil
}
