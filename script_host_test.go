// script_host_test.go - Lua machine API tests

package main

import (
	"strings"
	"testing"
)

func newScriptRig(words ...uint32) (*ScriptHost, func()) {
	host := NewScriptHost(NewMachineSized(wordsToImage(words...), 64, 0))
	return host, host.Close
}

// runScript executes Lua that asserts its own expectations.
func runScript(t *testing.T, host *ScriptHost, src string) {
	t.Helper()
	if err := host.RunString(src); err != nil {
		t.Fatalf("script failed: %v", err)
	}
}

func TestScript_PeekPoke(t *testing.T) {
	host, done := newScriptRig(asmLI(1, 1))
	defer done()

	runScript(t, host, `
		poke32(16, 0xDEADBEEF)
		assert(peek32(16) == 0xDEADBEEF, "poke32/peek32 round trip")
		assert(peek8(16) == 0xEF, "little-endian low byte")
		assert(peek16(18) == 0xDEAD, "little-endian high half")
		poke8(20, 0x42)
		assert(peek8(20) == 0x42, "poke8")
	`)
}

func TestScript_PeekOutOfBoundsRaises(t *testing.T) {
	host, done := newScriptRig(asmLI(1, 1))
	defer done()

	err := host.RunString(`peek32(4096)`)
	if err == nil {
		t.Fatal("peek32 past the end succeeded")
	}
	if !strings.Contains(err.Error(), "out of bounds") {
		t.Fatalf("error %q does not mention the bounds fault", err)
	}
}

func TestScript_Registers(t *testing.T) {
	host, done := newScriptRig(asmLI(1, 1))
	defer done()

	runScript(t, host, `
		setreg("a0", 123)
		assert(reg("a0") == 123, "set by ABI name")
		assert(reg(10) == 123, "read by index")
		setreg(11, 7)
		assert(reg("a1") == 7, "set by index")
		setreg("zero", 99)
		assert(reg("zero") == 0, "x0 stays zero")
		setpc(8)
		assert(pc() == 8, "setpc/pc")
		setpc(0)
	`)
}

func TestScript_BadRegisterRaises(t *testing.T) {
	host, done := newScriptRig(asmLI(1, 1))
	defer done()

	for _, src := range []string{`reg("q9")`, `reg(32)`, `setreg(true, 1)`} {
		if err := host.RunString(src); err == nil {
			t.Fatalf("%s succeeded, want error", src)
		}
	}
}

func TestScript_StepAndRun(t *testing.T) {
	host, done := newScriptRig(
		asmLI(1, 5),
		asmADDI(2, 1, 10),
		asmJAL(0, 4096),
	)
	defer done()

	runScript(t, host, `
		assert(step(), "first step")
		assert(reg("ra") == 5, "x1 after step")
		assert(not halted(), "still running")
		local reason = run()
		assert(reason == "normal exit", "run reason: " .. reason)
		assert(halted(), "halted after run")
		assert(reg("sp") == 15, "x2 after run")
		local ok, why = step()
		assert(not ok, "step after halt")
		assert(why == "normal exit", "halt reason from step: " .. why)
	`)
}

func TestScript_FaultIsAValueNotAnError(t *testing.T) {
	host, done := newScriptRig(0x00000000)
	defer done()

	runScript(t, host, `
		local reason, fault = run()
		assert(reason == "fault", "reason: " .. reason)
		assert(fault ~= nil, "fault string present")
		assert(string.find(fault, "illegal instruction"), "fault: " .. fault)
	`)
}

func TestScript_Reset(t *testing.T) {
	host, done := newScriptRig(asmLI(1, 5), asmJAL(0, 4096))
	defer done()

	runScript(t, host, `
		local reason = run()
		assert(reason == "normal exit", "reason: " .. reason)
		assert(halted(), "halted")
		reset()
		assert(not halted(), "running again after reset")
		assert(pc() == 0, "pc back at entry")
		assert(reg("ra") == 0, "registers cleared")
	`)
}

func TestScript_DisasmAndMemsize(t *testing.T) {
	host, done := newScriptRig(asmLI(1, 5))
	defer done()

	runScript(t, host, `
		assert(string.find(disasm(0), "li ra, 5", 1, true), "disasm text")
		assert(memsize() == 68, "4-byte image plus 64 scratch")
	`)
}
