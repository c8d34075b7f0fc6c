package proj

import (
	"embed"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
)

//go:embed skeleton
var skeleton embed.FS

// Logger reports each created path.
type Logger interface {
	Info(msg string, args ...any)
}

// New creates a news directory called name holding a config file and an
// example post. It fails if name already exists.
func New(name string, logger Logger) error {
	logger.Info("creating news directory", "path", name)

	tree := &node{IsDir: true, Path: name, Children: []*node{
		{IsDir: false, Path: "config.toml", Data: mustAsset("skeleton/config.toml")},
		{IsDir: true, Path: "posts", Children: []*node{
			{IsDir: false, Path: "welcome.md", Data: mustAsset("skeleton/posts/welcome.md")},
		}},
	}}

	err := buildTree(tree, "", logger)
	if err != nil {
		return fmt.Errorf("could not build project tree: %w", err)
	}

	return nil
}

type node struct {
	IsDir    bool
	Path     string
	Data     []byte
	Children []*node
}

func mustAsset(path string) []byte {
	b, err := skeleton.ReadFile(path)
	if err != nil {
		panic(err)
	}

	return b
}

func buildTree(n *node, parentPath string, logger Logger) error {
	path := filepath.Join(parentPath, n.Path)

	if n.IsDir {
		logger.Info("creating directory", "path", path)

		err := os.Mkdir(path, os.FileMode(0777))
		if err != nil {
			return fmt.Errorf("could not create directory %q: %w", path, err)
		}
	} else {
		logger.Info("creating file", "path", path)

		err := ioutil.WriteFile(path, n.Data, os.FileMode(0666))
		if err != nil {
			return fmt.Errorf("could not write file %q: %w", path, err)
		}
	}

	for i := range n.Children {
		err := buildTree(n.Children[i], path, logger)
		if err != nil {
			return err
		}
	}

	return nil
}
