package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM holding the name resolvers for games
// whose item and location names are computed instead of listed.
// Single-goroutine access only (session owner).
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

func newVM() *lua.LState {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})
	vm.SetGlobal("API_VERSION", lua.LNumber(1))
	return vm
}

// NewEngine creates a Lua engine and loads all scripts from scriptsDir and
// its "names" subdirectory. A missing directory yields an engine with no
// resolvers.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	e := &Engine{vm: newVM(), log: log}
	for _, dir := range []string{scriptsDir, filepath.Join(scriptsDir, "names")} {
		if err := e.loadDir(dir); err != nil {
			e.vm.Close()
			return nil, fmt.Errorf("load scripts: %w", err)
		}
	}
	return e, nil
}

// NewEngineFromSource creates an engine from a single chunk of Lua source.
func NewEngineFromSource(src string, log *zap.Logger) (*Engine, error) {
	e := &Engine{vm: newVM(), log: log}
	if err := e.vm.DoString(src); err != nil {
		e.vm.Close()
		return nil, fmt.Errorf("load script: %w", err)
	}
	return e, nil
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// ItemName calls the Lua item_name(game, id) function. A nil or non-string
// result means the script does not know the item.
func (e *Engine) ItemName(game string, item int64) (string, bool) {
	return e.callName("item_name", game, item)
}

// LocationName calls the Lua location_name(game, id) function.
func (e *Engine) LocationName(game string, location int64) (string, bool) {
	return e.callName("location_name", game, location)
}

func (e *Engine) callName(name, game string, id int64) (string, bool) {
	fn := e.vm.GetGlobal(name)
	if fn == lua.LNil {
		return "", false
	}
	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, lua.LString(game), lua.LNumber(id)); err != nil {
		e.log.Error("lua call error", zap.String("func", name), zap.String("game", game), zap.Int64("id", id), zap.Error(err))
		return "", false
	}
	result := e.vm.Get(-1)
	e.vm.Pop(1)
	s, ok := result.(lua.LString)
	if !ok || s == "" {
		return "", false
	}
	return string(s), true
}

// HintCost calls the optional Lua hint_cost(total_locations, percent)
// override. ok is false when no override is defined or it failed.
func (e *Engine) HintCost(totalLocations, percent int) (cost int, ok bool) {
	fn := e.vm.GetGlobal("hint_cost")
	if fn == lua.LNil {
		return 0, false
	}
	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, lua.LNumber(totalLocations), lua.LNumber(percent)); err != nil {
		e.log.Error("lua call error", zap.String("func", "hint_cost"), zap.Error(err))
		return 0, false
	}
	result := e.vm.Get(-1)
	e.vm.Pop(1)
	n, isNum := result.(lua.LNumber)
	if !isNum || n < 0 {
		e.log.Error("lua hint_cost returned invalid value", zap.String("value", result.String()))
		return 0, false
	}
	return int(n), true
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
