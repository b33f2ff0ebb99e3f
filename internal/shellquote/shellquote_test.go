package shellquote

import (
	"reflect"
	"testing"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"plain", "dolphin %u", []string{"dolphin", "%u"}},
		{"extra spaces", "  konsole   --new-tab ", []string{"konsole", "--new-tab"}},
		{"quoted", `"/opt/My App/run" --flag`, []string{"/opt/My App/run", "--flag"}},
		{"escapes", `sh -c "echo \"hi\" \$HOME"`, []string{"sh", "-c", `echo "hi" $HOME`}},
		{"empty quoted arg", `app ""`, []string{"app", ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Split(tt.in)
			if err != nil {
				t.Fatalf("Split(%q): %v", tt.in, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Split(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSplitUnterminated(t *testing.T) {
	if _, err := Split(`app "oops`); err == nil {
		t.Fatal("expected error for unterminated quote")
	}
}

func TestJoin(t *testing.T) {
	got := Join([]string{"xdg-open", "/home/u/My File.txt"})
	want := `xdg-open '/home/u/My File.txt'`
	if got != want {
		t.Errorf("Join = %q, want %q", got, want)
	}
}
