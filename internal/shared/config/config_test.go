package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestResolvePath_向上查找(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "configs"), 0o755); err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(root, defaultConfigRelPath)
	if err := os.WriteFile(want, []byte("a: 1\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	nested := filepath.Join(root, "cmd", "player")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	t.Chdir(nested)

	got, err := ResolvePath("")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	gotInfo, _ := os.Stat(got)
	wantInfo, _ := os.Stat(want)
	if !os.SameFile(gotInfo, wantInfo) {
		t.Fatalf("期望找到 %s, got=%s", want, got)
	}
}

func TestResolvePath_指定文件不存在(t *testing.T) {
	_, err := ResolvePath(filepath.Join(t.TempDir(), "nope.yml"))
	if !errors.Is(err, ErrConfigNotFound) {
		t.Fatalf("期望 ErrConfigNotFound, got=%v", err)
	}
}

func TestLoad_解码钩子(t *testing.T) {
	p := filepath.Join(t.TempDir(), "conf.yml")
	body := "server:\n  timeout: 1500ms\n  tags: a,b,c\n"
	if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	var out struct {
		Server struct {
			Timeout time.Duration `mapstructure:"timeout"`
			Tags    []string      `mapstructure:"tags"`
			Name    string        `mapstructure:"name"`
		} `mapstructure:"server"`
	}
	t.Setenv(EnvPrefix+"_SERVER_NAME", "from-env")

	if _, err := Load(p, &out, map[string]any{"server.name": ""}); err != nil {
		t.Fatalf("load: %v", err)
	}
	if out.Server.Timeout != 1500*time.Millisecond {
		t.Fatalf("期望 timeout=1.5s, got=%v", out.Server.Timeout)
	}
	if len(out.Server.Tags) != 3 || out.Server.Tags[2] != "c" {
		t.Fatalf("期望 tags 按逗号拆分, got=%v", out.Server.Tags)
	}
	if out.Server.Name != "from-env" {
		t.Fatalf("期望环境变量覆盖 server.name, got=%q", out.Server.Name)
	}
}
