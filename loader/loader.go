package loader

import (
	"bytes"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/witchlight/engine/state"
)

// collector accumulates Lua definitions during file execution.
type collector struct {
	game      *lua.LTable
	rooms     []rawRoom
	entities  []rawEntity
	recipes   []rawDef
	dialogues []rawDef
	rules     []rawRule
	handlers  []rawHandler
	order     int
}

func (c *collector) nextSourceOrder() int {
	c.order++
	return c.order
}

// Option configures a load.
type Option func(*options)

type options struct {
	log *slog.Logger
}

// WithLogger reports each validation warning through l.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// Load reads all .lua files from dir and returns the compiled definitions
// together with any validation warnings. The Lua VM is discarded after
// loading.
func Load(dir string, opts ...Option) (*state.Defs, []string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("reading game directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, nil, fmt.Errorf("reading game directory %s: not a directory", dir)
	}
	return LoadFS(os.DirFS(dir), ".", opts...)
}

// LoadFS is Load over an fs.FS, for games embedded in a binary or a test.
func LoadFS(fsys fs.FS, dir string, opts ...Option) (*state.Defs, []string, error) {
	o := options{log: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&o)
	}

	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, nil, fmt.Errorf("reading game directory %s: %w", dir, err)
	}
	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".lua") {
			luaFiles = append(luaFiles, e.Name())
		}
	}
	if len(luaFiles) == 0 {
		return nil, nil, fmt.Errorf("no .lua files found in %s", dir)
	}
	luaFiles = sortedLuaFiles(luaFiles)

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()
	openSafeLibs(L)
	sandbox(L)

	coll := &collector{}
	registerAPI(L, coll)

	for _, f := range luaFiles {
		src, err := fs.ReadFile(fsys, path.Join(dir, f))
		if err != nil {
			return nil, nil, fmt.Errorf("reading %s: %w", f, err)
		}
		fn, err := L.Load(bytes.NewReader(src), f)
		if err != nil {
			return nil, nil, fmt.Errorf("executing %s: %w", f, err)
		}
		L.Push(fn)
		if err := L.PCall(0, lua.MultRet, nil); err != nil {
			return nil, nil, fmt.Errorf("executing %s: %w", f, err)
		}
		o.log.Debug("lua file loaded", "file", f)
	}

	defs, err := compile(coll)
	if err != nil {
		return nil, nil, fmt.Errorf("compiling game data: %w", err)
	}

	warnings, err := validate(defs)
	for _, w := range warnings {
		o.log.Warn("game definition", "warning", w)
	}
	if err != nil {
		return nil, warnings, err
	}
	o.log.Info("game loaded",
		"title", defs.Game.Title,
		"rooms", len(defs.Rooms),
		"entities", len(defs.Entities),
		"recipes", len(defs.Recipes),
		"dialogues", len(defs.Dialogues))
	return defs, warnings, nil
}

// openSafeLibs opens base, table, string and math only.
func openSafeLibs(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

// sandbox removes globals that reach outside the content files.
func sandbox(L *lua.LState) {
	for _, name := range []string{
		"dofile", "loadfile", "load", "loadstring", "require",
		"rawset", "rawget", "rawequal",
		"collectgarbage",
	} {
		L.SetGlobal(name, lua.LNil)
	}

	// Content must load the same way every time.
	if tbl, ok := L.GetGlobal("math").(*lua.LTable); ok {
		tbl.RawSetString("random", lua.LNil)
		tbl.RawSetString("randomseed", lua.LNil)
	}
}
