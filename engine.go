// Package navengine is the library surface a host application links
// against: CalculatePath(mapId, start, end) and friends, wiring the
// map-set manager (mmap) to the path builder (pathfind) the way
// Navigation::CalculatePath drove MMapManager and PathFinder.
package navengine

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/ornfelt/navmesh/mmap"
	"github.com/ornfelt/navmesh/pathfind"
)

// Config configures an Engine.
type Config struct {
	MmapsRoot      string
	DefaultMaxNodes int32
	LogPath        string
}

// Engine is the process-wide pathfinding facade: one per host process,
// shared by every caller.
type Engine struct {
	manager *mmap.Manager
	log     *zap.Logger

	finders map[finderKey]*pathfind.Finder
}

type finderKey struct {
	mapID      uint32
	instanceID uint32
}

// New constructs an Engine rooted at cfg.MmapsRoot.
func New(cfg Config) (*Engine, error) {
	log, err := mmap.NewLogger(cfg.LogPath)
	if err != nil {
		return nil, fmt.Errorf("navengine: logger: %w", err)
	}
	manager := mmap.NewManager(mmap.Config{
		Root:            cfg.MmapsRoot,
		DefaultMaxNodes: cfg.DefaultMaxNodes,
		LogPath:         cfg.LogPath,
	}, log)
	return &Engine{manager: manager, log: log, finders: make(map[finderKey]*pathfind.Finder)}, nil
}

// Result is the return value of CalculatePath.
type Result struct {
	Points []mgl32.Vec3
	Type   pathfind.PathType
}

// CalculatePath loads mapID if needed, then drives the path builder from
// origin to dest for the given caller instanceID. straightPath selects
// funneled vertices over the iteratively smoothed corridor.
func (e *Engine) CalculatePath(mapID, instanceID uint32, origin, dest mgl32.Vec3, straightPath bool) (Result, error) {
	if err := e.manager.EnsureMapLoaded(mapID); err != nil {
		return Result{}, err
	}

	key := finderKey{mapID, instanceID}
	finder, ok := e.finders[key]
	if !ok {
		mesh, err := e.manager.GetMesh(mapID)
		if err != nil {
			return Result{}, err
		}
		finder = pathfind.NewFinder(mesh)
		e.finders[key] = finder
	}
	finder.SetUseStraightPath(straightPath)

	pt := finder.Calculate(origin, dest)
	switch pt {
	case pathfind.PathIncomplete:
		e.log.Warn("incomplete path", zap.Uint32("mapId", mapID), zap.Uint32("instanceId", instanceID))
	case pathfind.PathShortcut:
		e.log.Warn("shortcut path (snap or corridor failure)", zap.Uint32("mapId", mapID), zap.Uint32("instanceId", instanceID))
	}

	return Result{Points: finder.Points(), Type: pt}, nil
}

// LoadedMapCount reports how many maps have been bulk-loaded.
func (e *Engine) LoadedMapCount() int { return e.manager.LoadedMapCount() }

// FreePathArr exists for API parity with hosts ported from the
// manual-allocation original, where CalculatePath's result array had to be
// released explicitly. Result.Points is a regular Go slice reclaimed by the
// garbage collector, so this is a deliberate no-op.
func (e *Engine) FreePathArr(points []mgl32.Vec3) {}
