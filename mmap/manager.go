// Package mmap is the map-set manager: it lazily bulk-loads a map's header
// and tiles on first request, memoizes that bulk-load per mapId, and hands
// out one navmesh.Query per caller "instance" so callers can run
// concurrent searches against the same loaded map without sharing state.
package mmap

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"go.uber.org/zap"

	"github.com/ornfelt/navmesh/navmesh"
)

var (
	// ErrCorruptTile wraps every tile/header parse failure.
	ErrCorruptTile = fmt.Errorf("mmap: corrupt tile data")
	ErrMapNotFound = fmt.Errorf("mmap: map not loaded")
)

// Config configures a Manager; constructed explicitly by the caller, in
// the style of the navmesh package's own Params structs — no package-level
// flags or env parsing.
type Config struct {
	Root           string // directory containing <mapId3>.mmap / .mmtile files
	DefaultMaxNodes int32
	LogPath        string // optional; rotated via lumberjack when set
}

type mapSlot struct {
	mesh      *navmesh.Mesh
	tiles     map[uint32]navmesh.PolyRef // packTileID(x,y) -> tile base ref, memoizes loaded tiles
	instances map[uint32]*navmesh.Query  // instanceId -> query
}

// Manager is the process-wide mapId -> MapSlot table. loadMap and
// GetQuery are not reentrant: callers must not invoke them concurrently
// for the same Manager.
type Manager struct {
	cfg     Config
	log     *zap.Logger
	maps    map[uint32]*mapSlot
	zoneMap map[uint32]bool // mapId -> "bulk directory scan already done"
}

// NewManager constructs a Manager rooted at cfg.Root, logging through log
// (never nil — pass zap.NewNop() if logging is unwanted).
func NewManager(cfg Config, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		cfg:     cfg,
		log:     log,
		maps:    make(map[uint32]*mapSlot),
		zoneMap: make(map[uint32]bool),
	}
}

// LoadedMapCount reports how many maps have been bulk-loaded so far
// (supplemented from MMapManager::getLoadedMapsCount, for observability).
func (m *Manager) LoadedMapCount() int { return len(m.maps) }

var tileFileRe = regexp.MustCompile(`^(\d{3})(\d{2})(\d{2})\.mmtile$`)

// EnsureMapLoaded bulk-loads mapId's header and every tile file found under
// Root the first time it is requested, recording the scan in zoneMap so a
// repeat request is a no-op. Tile file I/O errors are surfaced, never
// silently ignored.
func (m *Manager) EnsureMapLoaded(mapID uint32) error {
	if m.zoneMap[mapID] {
		return nil
	}

	params, err := m.readHeaderFile(mapID)
	if err != nil {
		return err
	}
	mesh, err := navmesh.NewMesh(params)
	if err != nil {
		return fmt.Errorf("mmap: new mesh for map %03d: %w", mapID, err)
	}
	slot := &mapSlot{
		mesh:      mesh,
		tiles:     make(map[uint32]navmesh.PolyRef),
		instances: make(map[uint32]*navmesh.Query),
	}

	entries, err := os.ReadDir(m.cfg.Root)
	if err != nil {
		return fmt.Errorf("mmap: scan %s: %w", m.cfg.Root, err)
	}
	prefix := fmt.Sprintf("%03d", mapID)
	loaded := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		match := tileFileRe.FindStringSubmatch(e.Name())
		if match == nil || match[1] != prefix {
			continue
		}
		x, _ := strconv.Atoi(match[2])
		y, _ := strconv.Atoi(match[3])
		if err := m.loadTile(slot, mapID, int32(x), int32(y)); err != nil {
			m.log.Error("failed to load tile", zap.Uint32("mapId", mapID), zap.Int("x", x), zap.Int("y", y), zap.Error(err))
			return err
		}
		loaded++
	}

	m.maps[mapID] = slot
	m.zoneMap[mapID] = true
	m.log.Info("map loaded", zap.Uint32("mapId", mapID), zap.Int("tiles", loaded))
	return nil
}

func (m *Manager) readHeaderFile(mapID uint32) (navmesh.Params, error) {
	path := filepath.Join(m.cfg.Root, fmt.Sprintf("%03d.mmap", mapID))
	f, err := os.Open(path)
	if err != nil {
		return navmesh.Params{}, fmt.Errorf("mmap: open %s: %w", path, err)
	}
	defer f.Close()
	return readMapParams(f)
}

func (m *Manager) loadTile(slot *mapSlot, mapID uint32, x, y int32) error {
	key := packTileID(x, y)
	if _, ok := slot.tiles[key]; ok {
		return nil
	}

	path := filepath.Join(m.cfg.Root, fmt.Sprintf("%03d%02d%02d.mmtile", mapID, x, y))
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("mmap: open %s: %w", path, err)
	}
	defer f.Close()

	hdr, err := readTileHeader(f)
	if err != nil {
		return err
	}
	buf := make([]byte, hdr.Size)
	if _, err := io.ReadFull(f, buf); err != nil {
		return fmt.Errorf("mmap: %w: read %s: %v", ErrCorruptTile, path, err)
	}

	tile, err := decodeTilePayload(buf)
	if err != nil {
		return err
	}
	ref, err := slot.mesh.AddTile(tile, x, y)
	if err != nil {
		return fmt.Errorf("mmap: add tile %s: %w", path, err)
	}
	slot.tiles[key] = ref
	return nil
}

// GetQuery returns the navmesh.Query for (mapID, instanceID), creating one
// the first time that pair is requested. The map must already be loaded
// via EnsureMapLoaded.
func (m *Manager) GetQuery(mapID, instanceID uint32) (*navmesh.Query, error) {
	slot, ok := m.maps[mapID]
	if !ok {
		return nil, fmt.Errorf("%w: map %03d", ErrMapNotFound, mapID)
	}
	if q, ok := slot.instances[instanceID]; ok {
		return q, nil
	}
	maxNodes := m.cfg.DefaultMaxNodes
	if maxNodes <= 0 {
		maxNodes = 2048
	}
	q := navmesh.NewQuery(slot.mesh, maxNodes)
	slot.instances[instanceID] = q
	return q, nil
}

// GetMesh returns the loaded navmesh.Mesh for mapID.
func (m *Manager) GetMesh(mapID uint32) (*navmesh.Mesh, error) {
	slot, ok := m.maps[mapID]
	if !ok {
		return nil, fmt.Errorf("%w: map %03d", ErrMapNotFound, mapID)
	}
	return slot.mesh, nil
}

// UnloadMap drops a map's slot and every query/tile state attached to it.
func (m *Manager) UnloadMap(mapID uint32) {
	delete(m.maps, mapID)
	delete(m.zoneMap, mapID)
}
