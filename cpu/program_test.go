package cpu

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/pbrain/memory"
	"github.com/ezrec/pbrain/word"
)

func testProgram() *Program {
	return &Program{
		MemRequired: 10,
		Statements: []Statement{
			{LineNo: 1, Pc: 0, Words: []string{"ldai", "5"},
				Code: word.Make(word.OP_LOAD_ACC_IMM, "0005")},
			{LineNo: 2, Pc: 1, Words: []string{"stad", "09"},
				Code: word.Make(word.OP_STORE_ACC_DIR, "09")},
			{LineNo: 4, Pc: 2, Words: []string{"halt"},
				Code: word.Make(word.OP_HALT)},
		},
	}
}

func TestProgram_Debug(t *testing.T) {
	assert := assert.New(t)

	prog := testProgram()

	st := prog.Debug(0)
	if assert.NotNil(st) {
		assert.Equal(1, st.LineNo)
	}

	st = prog.Debug(2)
	if assert.NotNil(st) {
		assert.Equal(4, st.LineNo)
		assert.Equal([]string{"halt"}, st.Words)
	}
}

func TestProgram_Debug_NotFound(t *testing.T) {
	assert := assert.New(t)

	prog := testProgram()

	assert.Nil(prog.Debug(3))
	assert.Nil(prog.Debug(-1))
}

func TestProgram_Image(t *testing.T) {
	assert := assert.New(t)

	prog := testProgram()

	img := prog.Image()
	assert.Equal(10, img.MemRequired)
	assert.Equal([]word.Word{
		word.Make(word.OP_LOAD_ACC_IMM, "0005"),
		word.Make(word.OP_STORE_ACC_DIR, "09"),
		word.Make(word.OP_HALT),
	}, img.Words)
}

func TestProgram_WriteTo(t *testing.T) {
	assert := assert.New(t)

	prog := testProgram()

	var buff bytes.Buffer
	n, err := prog.WriteTo(&buff)
	assert.NoError(err)
	assert.Equal(int64(buff.Len()), n)
	assert.Equal("10\n030005\n070900\n990000\n", buff.String())

	img, err := memory.ParseImage(&buff)
	assert.NoError(err)
	assert.Equal(prog.Image(), img)
}

func TestProgram_Listing(t *testing.T) {
	assert := assert.New(t)

	prog := testProgram()

	var buff strings.Builder
	err := prog.Listing(&buff)
	assert.NoError(err)

	lines := strings.Split(strings.TrimSpace(buff.String()), "\n")
	assert.Equal(3, len(lines))
	assert.Equal("00: 030005  ;    1: ldai 5", lines[0])
	assert.Equal("02: 990000  ;    4: halt", lines[2])
}

func TestProgram_Run(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	prog, err := asm.Parse(strings.NewReader(`
.mem 20
        ldai 0
        ldpi P0 total
        ldr0 4
loop:   addr R0
        star R1
        ldar R0
        subi 1
        star R0
        gti 0
        ldar R1
        brt loop
        stap P0
        halt
total:  .word 0
`))
	if !assert.NoError(err) {
		return
	}
	assert.Equal(20, prog.MemRequired)

	img := prog.Image()
	mem := memory.New(img.MemRequired)
	_, err = mem.Load(0, img.MemRequired, img.Words)
	assert.NoError(err)

	cpu := NewCpu()
	cpu.LR = img.MemRequired
	cpu.IC = 1000

	status, _ := runTestCpu(cpu, mem)
	assert.Equal(HALT, status)

	value, err := mem.Value(13)
	assert.NoError(err)
	assert.Equal(10, value)
	assert.Equal(0, cpu.RangeFaults)
}
