// Command blitzen-demo is a minimal runnable driver of the renderer
// package: it opens a window, optionally uploads a directory of demo
// textures, builds a unit-cube scene through the resource builder, and runs
// the draw loop until the window closes.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/blitzen-gpu/blitzen/common"
	"github.com/blitzen-gpu/blitzen/renderer"
	"github.com/blitzen-gpu/blitzen/resourcebuilder"
	"github.com/blitzen-gpu/blitzen/resources"
	"github.com/blitzen-gpu/blitzen/window"
)

func main() {
	var (
		width, height int
		texturesDir   string
	)
	flag.IntVar(&width, "width", 1280, "initial window width")
	flag.IntVar(&height, "height", 720, "initial window height")
	flag.StringVar(&texturesDir, "textures", "", "directory of .dds textures to upload before setup")
	flag.Parse()

	if err := run(width, height, texturesDir); err != nil {
		log.Fatalf("blitzen-demo: %v", err)
	}
}

func run(width, height int, texturesDir string) error {
	win, err := window.New(
		window.WithTitle("Blitzen Demo"),
		window.WithWidth(width),
		window.WithHeight(height),
	)
	if err != nil {
		return fmt.Errorf("create window: %w", err)
	}
	defer win.Close()

	r := renderer.New()
	if err := r.Init(win); err != nil {
		return fmt.Errorf("init renderer: %w", err)
	}
	defer r.Release()

	if texturesDir != "" {
		entries, err := os.ReadDir(texturesDir)
		if err != nil {
			return fmt.Errorf("read textures dir: %w", err)
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			path := texturesDir + "/" + e.Name()
			if err := r.UploadTexture(path); err != nil {
				return fmt.Errorf("upload texture %s: %w", path, err)
			}
		}
	}

	scene, err := demoScene()
	if err != nil {
		return fmt.Errorf("build demo scene: %w", err)
	}
	if err := r.SetupForRendering(scene); err != nil {
		return fmt.Errorf("setup for rendering: %w", err)
	}

	var angle float32
	last := time.Now()

	for win.ProcessMessages() {
		now := time.Now()
		dt := float32(now.Sub(last).Seconds())
		last = now

		angle += dt
		transform := common.MeshTransform{
			Position:    [3]float32{0, 0, 0},
			Scale:       1,
			Orientation: common.FromAxisAngle([3]float32{0, 1, 0}, angle),
		}
		if err := r.UpdateObjectTransform(0, transform); err != nil {
			return fmt.Errorf("update object transform: %w", err)
		}

		view := demoView(width, height)
		if err := r.DrawFrame(view, uint32(len(scene.OpaqueObjects)), 0, 0); err != nil {
			return fmt.Errorf("draw frame: %w", err)
		}
	}

	return nil
}

// demoScene runs a unit cube through the resource builder (vertex quantize,
// bounding sphere, LOD chain) and assembles it into the scene's global
// buffers: one material, one opaque render object referencing transform
// slot 0.
func demoScene() (resources.SceneData, error) {
	positions := [][3]float32{
		{-0.5, -0.5, -0.5}, {0.5, -0.5, -0.5}, {0.5, 0.5, -0.5}, {-0.5, 0.5, -0.5},
		{-0.5, -0.5, 0.5}, {0.5, -0.5, 0.5}, {0.5, 0.5, 0.5}, {-0.5, 0.5, 0.5},
	}
	normals := [][3]float32{
		{-0.577, -0.577, -0.577}, {0.577, -0.577, -0.577}, {0.577, 0.577, -0.577}, {-0.577, 0.577, -0.577},
		{-0.577, -0.577, 0.577}, {0.577, -0.577, 0.577}, {0.577, 0.577, 0.577}, {-0.577, 0.577, 0.577},
	}
	uvs := [][2]float32{
		{0, 0}, {1, 0}, {1, 1}, {0, 1},
		{0, 0}, {1, 0}, {1, 1}, {0, 1},
	}
	indices := []uint32{
		0, 2, 1, 0, 3, 2, // back
		4, 5, 6, 4, 6, 7, // front
		0, 1, 5, 0, 5, 4, // bottom
		2, 3, 7, 2, 7, 6, // top
		0, 4, 7, 0, 7, 3, // left
		1, 2, 6, 1, 6, 5, // right
	}

	builder := resourcebuilder.NewBuilder(2)
	built, errs := builder.BuildAll([]resourcebuilder.RawPrimitive{
		{Positions: positions, Normals: normals, UVs: uvs, Indices: indices, MaterialId: 0},
	})
	for _, err := range errs {
		if err != nil {
			return resources.SceneData{}, err
		}
	}

	scene := resourcebuilder.Assemble(built)
	scene.Materials = []resources.Material{
		{AlbedoTexture: 0, NormalTexture: 0, SpecularTexture: 0, EmissiveTexture: 0, MaterialId: 0},
	}
	scene.OpaqueObjects = []resources.RenderObject{
		{TransformId: 0, SurfaceId: 0},
	}
	return scene, nil
}

func demoView(width, height int) common.CameraViewData {
	const fovY = 1.0471975512 // 60 degrees
	aspect := float32(width) / float32(height)
	const zNear, zFar = 0.1, 100.0

	var proj, view, projView [16]float32
	common.PerspectiveReverseZ(proj[:], fovY, aspect, zNear, zFar)
	common.LookAt(view[:], 0, 0, 3, 0, 0, 0, 0, 1, 0)
	common.Mul4(projView[:], proj[:], view[:])

	return common.CameraViewData{
		View:           view,
		ProjectionView: projView,
		CameraPosition: [3]float32{0, 0, 3},
		ZNear:          zNear,
		ZFar:           zFar,
		Frustum:        common.ExtractScalarFrustum(proj[:]),
		PyramidWidth:   float32(common.PreviousPow2(uint32(width))),
		PyramidHeight:  float32(common.PreviousPow2(uint32(height))),
		LodTarget:      1.0,
	}
}
