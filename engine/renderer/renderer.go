package renderer

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/ember/engine/core"
	"github.com/spaghettifunk/ember/engine/renderer/metadata"
)

// Renderer ties a backend, its window and the asset loaders together. It
// owns every mesh it loads and releases them on Shutdown.
type Renderer struct {
	backend  Backend
	window   Window
	uploader *Uploader
	pipeline *Pipeline
	meshes   []*metadata.GpuMesh
}

func New(window Window, backend Backend, assets AssetSource, camera core.CameraConfig) *Renderer {
	return &Renderer{
		backend:  backend,
		window:   window,
		uploader: NewUploader(backend, assets),
		pipeline: NewPipeline(backend, assets, camera.FOV, camera.Near, camera.Far),
	}
}

func (r *Renderer) Initialize(vertexPath, fragmentPath string) error {
	return r.pipeline.Initialize(vertexPath, fragmentPath, r.window)
}

func (r *Renderer) Pipeline() *Pipeline {
	return r.pipeline
}

func (r *Renderer) Uploader() *Uploader {
	return r.uploader
}

func (r *Renderer) SetClearColor(c [4]float32) {
	r.window.SetClearColor(c[0], c[1], c[2], c[3])
}

// LoadMesh imports and uploads an OBJ file.
func (r *Renderer) LoadMesh(path string, textures metadata.MaterialTexturePaths) (*metadata.GpuMesh, error) {
	mesh, err := r.uploader.LoadMesh(path, textures)
	if err != nil {
		return nil, err
	}
	r.meshes = append(r.meshes, mesh)
	r.pipeline.AddMaterial(&mesh.Textures)
	return mesh, nil
}

// LoadScene loads the mesh of every configured object, once per OBJ path,
// and spawns the objects in config order. The first mesh that fails to load
// aborts the scene.
func (r *Renderer) LoadScene(objects []core.ObjectConfig) ([]*metadata.WorldObject, error) {
	meshes := make(map[string]*metadata.GpuMesh)
	spawned := make([]*metadata.WorldObject, 0, len(objects))
	for _, oc := range objects {
		mesh, ok := meshes[oc.Mesh]
		if !ok {
			textures := metadata.MaterialTexturePaths{
				Albedo:   oc.Textures.Albedo,
				Normal:   oc.Textures.Normal,
				Specular: oc.Textures.Specular,
				Metallic: oc.Textures.Metallic,
				Emission: oc.Textures.Emission,
			}
			m, err := r.LoadMesh(oc.Mesh, textures)
			if err != nil {
				return nil, fmt.Errorf("failed to load mesh %s for %s: %w", oc.Mesh, oc.Name, err)
			}
			meshes[oc.Mesh] = m
			mesh = m
		}

		o := r.Spawn(oc.Name, mesh, mgl32.Vec3(oc.Position), mgl32.Vec3(oc.Rotation), mgl32.Vec3(oc.Scale))
		o.Spin = mgl32.Vec3(oc.Spin)
		spawned = append(spawned, o)
	}
	return spawned, nil
}

// Spawn places mesh in the scene and returns the new object.
func (r *Renderer) Spawn(name string, mesh *metadata.GpuMesh, position, rotation, scale mgl32.Vec3) *metadata.WorldObject {
	o := metadata.NewWorldObject(name, mesh)
	o.Transform = position
	o.Rotation = rotation
	o.Scale = scale
	r.pipeline.AddObject(o)
	return o
}

func (r *Renderer) DrawFrame() error {
	return r.pipeline.Render()
}

func (r *Renderer) OnResize(width, height uint32) {
	r.pipeline.SetAspect(width, height)
}

func (r *Renderer) Shutdown() {
	for _, m := range r.meshes {
		m.Release(r.backend)
	}
	r.meshes = nil
	r.pipeline.Shutdown()
	stats := r.uploader.Stats()
	core.LogDebug("renderer shut down after %d meshes, %d textures (%d failed)", stats.Meshes, stats.TexturesCreated, stats.TexturesFailed)
}
