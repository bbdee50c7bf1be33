// script_host.go - Lua scripting host for driving the Meridian VM

/*
Meridian - a RISC-V (RV32I/RV32M) virtual machine

(c) 2025 - 2026 The Meridian VM authors
https://github.com/meridianvm/meridian
License: GPLv3 or later
*/

/*
script_host.go - Lua Script Host

Exposes the machine to Lua for scripted regression drives and automation
(-script on the command line). The surface mirrors the monitor: peek/poke,
register access, stepping, running to halt, disassembly.

Faults are reported as return values, not Lua errors, so scripts can assert
on them: step() returns false plus the fault string; run() returns the halt
reason string plus an optional fault string.
*/

package main

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

// ScriptHost binds one machine into a Lua state.
type ScriptHost struct {
	machine *Machine
	L       *lua.LState
}

// NewScriptHost creates a Lua state with the machine API registered.
func NewScriptHost(m *Machine) *ScriptHost {
	host := &ScriptHost{
		machine: m,
		L:       lua.NewState(),
	}
	host.register()
	return host
}

// Close releases the Lua state.
func (s *ScriptHost) Close() {
	s.L.Close()
}

// RunFile executes a Lua script file against the machine.
func (s *ScriptHost) RunFile(path string) error {
	return s.L.DoFile(path)
}

// RunString executes Lua source against the machine.
func (s *ScriptHost) RunString(src string) error {
	return s.L.DoString(src)
}

func (s *ScriptHost) register() {
	fns := map[string]lua.LGFunction{
		"peek8":   s.luaPeek(WidthByte),
		"peek16":  s.luaPeek(WidthHalfWord),
		"peek32":  s.luaPeek(WidthWord),
		"poke8":   s.luaPoke(WidthByte),
		"poke16":  s.luaPoke(WidthHalfWord),
		"poke32":  s.luaPoke(WidthWord),
		"reg":     s.luaReg,
		"setreg":  s.luaSetReg,
		"pc":      s.luaPC,
		"setpc":   s.luaSetPC,
		"step":    s.luaStep,
		"run":     s.luaRun,
		"halted":  s.luaHalted,
		"reset":   s.luaReset,
		"disasm":  s.luaDisasm,
		"memsize": s.luaMemSize,
	}
	for name, fn := range fns {
		s.L.SetGlobal(name, s.L.NewFunction(fn))
	}
}

func (s *ScriptHost) luaPeek(width MemWidth) lua.LGFunction {
	return func(L *lua.LState) int {
		addr := uint32(L.CheckInt64(1))
		v, err := s.machine.Hart().Memory().ReadUint(addr, width)
		if err != nil {
			L.RaiseError("%v", err)
			return 0
		}
		L.Push(lua.LNumber(v))
		return 1
	}
}

func (s *ScriptHost) luaPoke(width MemWidth) lua.LGFunction {
	return func(L *lua.LState) int {
		addr := uint32(L.CheckInt64(1))
		val := uint64(L.CheckInt64(2))
		if err := s.machine.Hart().Memory().WriteUint(addr, width, val); err != nil {
			L.RaiseError("%v", err)
		}
		return 0
	}
}

// reg("a0") or reg(10) -> low 32 bits of the register.
func (s *ScriptHost) luaReg(L *lua.LState) int {
	idx, err := s.checkRegArg(L, 1)
	if err != nil {
		L.RaiseError("%v", err)
		return 0
	}
	L.Push(lua.LNumber(s.machine.Hart().Registers().Get32(idx)))
	return 1
}

func (s *ScriptHost) luaSetReg(L *lua.LState) int {
	idx, err := s.checkRegArg(L, 1)
	if err != nil {
		L.RaiseError("%v", err)
		return 0
	}
	s.machine.Hart().Registers().Set32(idx, uint32(L.CheckInt64(2)))
	return 0
}

func (s *ScriptHost) luaPC(L *lua.LState) int {
	L.Push(lua.LNumber(s.machine.Hart().Registers().PC()))
	return 1
}

func (s *ScriptHost) luaSetPC(L *lua.LState) int {
	s.machine.Hart().Registers().SetPC(uint64(L.CheckInt64(1)))
	return 0
}

// step([n]) -> true, or false plus a fault/halt string.
func (s *ScriptHost) luaStep(L *lua.LState) int {
	n := L.OptInt(1, 1)
	for i := 0; i < n; i++ {
		ok, err := s.machine.Step()
		if err != nil {
			L.Push(lua.LFalse)
			L.Push(lua.LString(err.Error()))
			return 2
		}
		if !ok {
			L.Push(lua.LFalse)
			L.Push(lua.LString(s.machine.HaltReason().String()))
			return 2
		}
	}
	L.Push(lua.LTrue)
	return 1
}

// run() -> halt reason string, plus the fault string when faulted.
func (s *ScriptHost) luaRun(L *lua.LState) int {
	err := s.machine.Run()
	L.Push(lua.LString(s.machine.HaltReason().String()))
	if err != nil {
		L.Push(lua.LString(err.Error()))
		return 2
	}
	return 1
}

func (s *ScriptHost) luaHalted(L *lua.LState) int {
	L.Push(lua.LBool(s.machine.Hart().State() == HartHalted))
	return 1
}

func (s *ScriptHost) luaReset(L *lua.LState) int {
	s.machine.Reset()
	return 0
}

func (s *ScriptHost) luaDisasm(L *lua.LState) int {
	addr := uint32(L.CheckInt64(1))
	L.Push(lua.LString(DisasmAt(s.machine.Hart().Memory(), addr)))
	return 1
}

func (s *ScriptHost) luaMemSize(L *lua.LState) int {
	L.Push(lua.LNumber(s.machine.Hart().Memory().Size()))
	return 1
}

// checkRegArg accepts a register as ABI name, "xN" string, or index.
func (s *ScriptHost) checkRegArg(L *lua.LState, pos int) (byte, error) {
	switch v := L.Get(pos).(type) {
	case lua.LString:
		idx, known := LookupReg(string(v))
		if !known {
			return 0, fmt.Errorf("unknown register %q", string(v))
		}
		return idx, nil
	case lua.LNumber:
		n := int(v)
		if n < 0 || n >= NUM_REGISTERS {
			return 0, fmt.Errorf("register index %d out of range", n)
		}
		return byte(n), nil
	}
	return 0, fmt.Errorf("register argument must be a name or index")
}
