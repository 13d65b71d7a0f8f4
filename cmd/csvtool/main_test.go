package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// execute runs the CLI in-process with an in-memory run history.
func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_URL", "")

	a := &app{}
	root := newRootCmd(a)

	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)

	err = root.ExecuteContext(context.Background())
	a.close()
	return out.String(), errOut.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestProfile_Basic(t *testing.T) {
	path := writeFile(t, "test.csv", "Name,Age,Status\nAlice,30,Active\nBob,25,Pending\nCharlie,35,Active")

	stdout, _, err := execute(t, "profile", path)
	if err != nil {
		t.Fatalf("profile error = %v", err)
	}

	for _, want := range []string{"File Profile", "Rows: 3", "Columns: 3", "Name: text", "Age: text", "Status: text"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("output missing %q:\n%s", want, stdout)
		}
	}
	if strings.Contains(stdout, "Validation Errors") {
		t.Errorf("output has validation errors without a key:\n%s", stdout)
	}
}

func TestProfile_KeyColumn(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
		notWant []string
	}{
		{
			name:    "valid codes",
			content: "ClientMatterCode,Name,Status\n12345.67890,Alice,Active\n11111.22222,Bob,Pending",
			want:    []string{"Rows: 2"},
			notWant: []string{"Validation Errors", "Duplicates found"},
		},
		{
			name:    "validation errors",
			content: "ClientMatterCode,Name\n12345.67890,Alice\ninvalid,Bob\n12345.1,Charlie",
			want: []string{
				"Validation Errors:",
				"Row 3: invalid - Invalid format - missing period",
				"Row 4: 12345.1 - Possible truncation - second part too short",
			},
		},
		{
			name:    "duplicates",
			content: "ClientMatterCode,Name\n12345.67890,Alice\n11111.22222,Bob\n12345.67890,Charlie",
			want:    []string{"Duplicates found on ClientMatterCode:", "Count: 1", "Values: 12345.67890"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "test.csv", tt.content)

			stdout, _, err := execute(t, "profile", path, "--key", "ClientMatterCode")
			if err != nil {
				t.Fatalf("profile error = %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(stdout, want) {
					t.Errorf("output missing %q:\n%s", want, stdout)
				}
			}
			for _, nw := range tt.notWant {
				if strings.Contains(stdout, nw) {
					t.Errorf("output unexpectedly contains %q:\n%s", nw, stdout)
				}
			}
		})
	}
}

func TestProfile_MissingKeyColumn(t *testing.T) {
	path := writeFile(t, "test.csv", "Name,Age\nAlice,30\nBob,25")

	stdout, stderr, err := execute(t, "profile", path, "--key", "NonexistentColumn")
	if err != nil {
		t.Fatalf("profile error = %v, want success", err)
	}
	if !strings.Contains(stderr, "Column 'NonexistentColumn' not found") {
		t.Errorf("stderr = %q, want missing column warning", stderr)
	}
	if !strings.Contains(stdout, "File Profile") {
		t.Errorf("stdout = %q, want profile", stdout)
	}
}

func TestProfile_NonexistentFile(t *testing.T) {
	_, stderr, err := execute(t, "profile", filepath.Join(t.TempDir(), "nonexistent.csv"))

	if !errors.Is(err, errReported) {
		t.Fatalf("error = %v, want errReported", err)
	}
	if !strings.Contains(stderr, "Error:") || !strings.Contains(stderr, "IN004") {
		t.Errorf("stderr = %q, want coded error", stderr)
	}
}

func TestTransform_Basic(t *testing.T) {
	input := writeFile(t, "input.csv", "OriginalName,OriginalAge,Status\n  alice smith  ,30,ACTIVE\nbob jones,  25  ,PENDING")
	output := filepath.Join(t.TempDir(), "out", "output.csv")

	stdout, _, err := execute(t, "transform", input,
		"-c", "OriginalName:Name",
		"-c", "OriginalAge:Age",
		"-c", "Status",
		"--case", "proper",
		"--output", output,
	)
	if err != nil {
		t.Fatalf("transform error = %v", err)
	}
	if !strings.Contains(stdout, "Successfully wrote 2 rows to "+output) {
		t.Errorf("stdout = %q, want success message", stdout)
	}

	got, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	want := "Name,Age,Status\nAlice Smith,30,Active\nBob Jones,25,Pending\n"
	if string(got) != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestTransform_KeepFirst(t *testing.T) {
	input := writeFile(t, "input.csv", "matter id,name\n12345.67890,bob ltd\n54321.09876,ann llp\n12345.67890,bob ltd again\n")
	output := filepath.Join(t.TempDir(), "clean.csv")

	stdout, _, err := execute(t, "transform", input,
		"-c", "matter id:ClientMatterCode",
		"-c", "name:Name",
		"--duplicates", "keep-first",
		"-o", output,
	)
	if err != nil {
		t.Fatalf("transform error = %v", err)
	}
	if !strings.Contains(stdout, "Removed 1 duplicate rows") {
		t.Errorf("stdout = %q, want removal count", stdout)
	}
	if !strings.Contains(stdout, "Successfully wrote 2 rows") {
		t.Errorf("stdout = %q, want 2 rows written", stdout)
	}
}

func TestTransform_DefaultsFromEnvironment(t *testing.T) {
	t.Setenv("CSVTOOL_DEFAULT_CASE", "upper")
	t.Setenv("CSVTOOL_DEFAULT_KEY", "Code")

	input := writeFile(t, "input.csv", "Code,Name\n12345.67890,acme\n")
	output := filepath.Join(t.TempDir(), "clean.csv")

	if _, stderr, err := execute(t, "transform", input, "-c", "Code", "-c", "Name", "-o", output); err != nil {
		t.Fatalf("transform error = %v (stderr %s)", err, stderr)
	}

	got, _ := os.ReadFile(output)
	if want := "Code,Name\n12345.67890,ACME\n"; string(got) != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestTransform_Failures(t *testing.T) {
	tests := []struct {
		name       string
		content    string
		args       []string
		wantStderr []string
	}{
		{
			name:    "invalid codes",
			content: "ClientMatterCode\n12345.1\n1234.56789\n",
			args:    []string{"-c", "ClientMatterCode"},
			wantStderr: []string{
				"Validation Error:",
				"  Row 2: 12345.1 - Possible truncation - second part too short",
				"  Row 3: 1234.56789 - Possible truncation - first part too short",
			},
		},
		{
			name:       "duplicate keys",
			content:    "ClientMatterCode\n12345.67890\n12345.67890\n",
			args:       []string{"-c", "ClientMatterCode"},
			wantStderr: []string{"Error:", "12345.67890", "Code: DUP001"},
		},
		{
			name:       "missing column",
			content:    "Name\nAlice\n",
			args:       []string{"-c", "Matter"},
			wantStderr: []string{`column "Matter" not found. Available columns: Name`, "Code: SCH001"},
		},
		{
			name:       "bad mapping",
			content:    "Name\nAlice\n",
			args:       []string{"-c", "a:b:c"},
			wantStderr: []string{"Code: MAP002"},
		},
		{
			name:       "bad case mode",
			content:    "Name\nAlice\n",
			args:       []string{"-c", "Name", "--case", "title"},
			wantStderr: []string{"Code: OPT001"},
		},
		{
			name:       "header only",
			content:    "Name\n",
			args:       []string{"-c", "Name"},
			wantStderr: []string{"Warning: Input file contains no data rows"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := writeFile(t, "input.csv", tt.content)
			output := filepath.Join(t.TempDir(), "clean.csv")

			args := append([]string{"transform", input, "-o", output}, tt.args...)
			_, stderr, err := execute(t, args...)

			if !errors.Is(err, errReported) {
				t.Fatalf("error = %v, want errReported", err)
			}
			for _, want := range tt.wantStderr {
				if !strings.Contains(stderr, want) {
					t.Errorf("stderr missing %q:\n%s", want, stderr)
				}
			}
			if _, statErr := os.Stat(output); !os.IsNotExist(statErr) {
				t.Errorf("output file exists after failure (stat error %v)", statErr)
			}
		})
	}
}

func TestTransform_RequiredFlags(t *testing.T) {
	input := writeFile(t, "input.csv", "Name\nAlice\n")

	_, _, err := execute(t, "transform", input)

	if err == nil || errors.Is(err, errReported) {
		t.Fatalf("error = %v, want a usage error", err)
	}
	if !strings.Contains(err.Error(), "required flag") {
		t.Errorf("error = %v, want required flag message", err)
	}
}

func TestRuns_Empty(t *testing.T) {
	stdout, _, err := execute(t, "runs")
	if err != nil {
		t.Fatalf("runs error = %v", err)
	}
	if !strings.Contains(stdout, "No runs recorded") {
		t.Errorf("stdout = %q, want empty message", stdout)
	}
}
