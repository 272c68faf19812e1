package fingerprint

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "ijazah/pkg/domain-errors"
)

func validInputs() Inputs {
	return Inputs{
		EnrollmentNumber: "2020010001",
		HolderName:       "Budi Santoso",
		ProgramCode:      "IF",
		SerialNumber:     "IJZ-2024-001",
		GraduationDate:   time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC),
	}
}

func TestCompute_Deterministic(t *testing.T) {
	first, err := Compute(validInputs())
	require.NoError(t, err)
	second, err := Compute(validInputs())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestCompute_Format(t *testing.T) {
	fp, err := Compute(validInputs())
	require.NoError(t, err)
	assert.Len(t, fp, 66)
	assert.True(t, strings.HasPrefix(fp, "0x"))
	assert.True(t, IsWellFormed(fp))
}

func TestCompute_InsignificantDifferencesCollapse(t *testing.T) {
	base, err := Compute(validInputs())
	require.NoError(t, err)

	noisy := validInputs()
	noisy.HolderName = "  BUDI SANTOSO "
	noisy.SerialNumber = "ijz-2024-001"
	noisy.ProgramCode = " if"

	got, err := Compute(noisy)
	require.NoError(t, err)
	assert.Equal(t, base, got)
}

func TestCompute_AnyFieldChangesOutput(t *testing.T) {
	base, err := Compute(validInputs())
	require.NoError(t, err)

	mutations := map[string]func(*Inputs){
		"enrollment number": func(in *Inputs) { in.EnrollmentNumber = "2020010002" },
		"holder name":       func(in *Inputs) { in.HolderName = "Siti Rahayu" },
		"program code":      func(in *Inputs) { in.ProgramCode = "SI" },
		"serial number":     func(in *Inputs) { in.SerialNumber = "IJZ-2024-002" },
		"graduation date":   func(in *Inputs) { in.GraduationDate = in.GraduationDate.AddDate(0, 0, 1) },
	}
	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			in := validInputs()
			mutate(&in)
			got, err := Compute(in)
			require.NoError(t, err)
			assert.NotEqual(t, base, got)
		})
	}
}

func TestCompute_MissingFieldsFailDataIncomplete(t *testing.T) {
	mutations := map[string]func(*Inputs){
		"enrollment number": func(in *Inputs) { in.EnrollmentNumber = "  " },
		"holder name":       func(in *Inputs) { in.HolderName = "" },
		"program code":      func(in *Inputs) { in.ProgramCode = "" },
		"serial number":     func(in *Inputs) { in.SerialNumber = "" },
		"graduation date":   func(in *Inputs) { in.GraduationDate = time.Time{} },
	}
	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			in := validInputs()
			mutate(&in)
			_, err := Compute(in)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeDataIncomplete))
		})
	}
}

func TestComputeSerial(t *testing.T) {
	fp, err := ComputeSerial("IJZ-2024-001")
	require.NoError(t, err)
	assert.True(t, IsWellFormed(fp))

	again, err := ComputeSerial("  ijz-2024-001 ")
	require.NoError(t, err)
	assert.Equal(t, fp, again)

	full, err := Compute(validInputs())
	require.NoError(t, err)
	assert.NotEqual(t, full, fp)

	_, err = ComputeSerial("  ")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeDataIncomplete))
}

func TestNormalize(t *testing.T) {
	fp, err := Compute(validInputs())
	require.NoError(t, err)

	assert.Equal(t, fp, Normalize("  "+strings.ToUpper(fp)+"  "))
	assert.Equal(t, fp, Normalize(strings.TrimPrefix(fp, "0x")))
}

func TestIsWellFormed(t *testing.T) {
	cases := map[string]bool{
		"0x" + strings.Repeat("a", 64): true,
		"0x" + strings.Repeat("A", 64): false,
		"0x" + strings.Repeat("a", 63): false,
		strings.Repeat("a", 64):        false,
		"0x" + strings.Repeat("g", 64): false,
		"":                             false,
	}
	for input, want := range cases {
		assert.Equal(t, want, IsWellFormed(input), input)
	}
}
