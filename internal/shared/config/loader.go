package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const defaultConfigRelPath = "configs/conf.yml"

var ErrConfigNotFound = errors.New("config file not found")

// ResolvePath 约定：
// 1) 传入 cfgName（相对/绝对路径）则优先使用，相对路径按当前目录解析；
// 2) 否则从当前目录开始向上查找 `configs/conf.yml`。
func ResolvePath(cfgName string) (string, error) {
	curDir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	if cfgName != "" {
		p := cfgName
		if !filepath.IsAbs(p) {
			p = filepath.Join(curDir, cfgName)
		}
		if !fileExist(p) {
			return "", fmt.Errorf("%w: %s", ErrConfigNotFound, p)
		}
		return p, nil
	}
	return findConfigUpward(curDir)
}

func findConfigUpward(startDir string) (string, error) {
	dir := startDir
	for {
		candidate := filepath.Join(dir, defaultConfigRelPath)
		if fileExist(candidate) {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("%w: searched %s upward from %s", ErrConfigNotFound, defaultConfigRelPath, startDir)
		}
		dir = parent
	}
}

func fileExist(fileName string) bool {
	st, err := os.Stat(fileName)
	return err == nil && !st.IsDir()
}
