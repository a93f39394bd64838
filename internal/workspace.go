package internal

import (
	"os"
	"path/filepath"
)

// WorkspaceDirName is the marker directory holding config and results.
const WorkspaceDirName = ".sonda"

// Workspace is where sonda keeps its configuration and run results: a
// .sonda directory found by walking up from the working directory, falling
// back to the user's home.
type Workspace struct {
	Root string // directory containing .sonda
	Dir  string // the .sonda directory itself
}

func (w Workspace) ConfigPath() string {
	return filepath.Join(w.Dir, "config.yaml")
}

func (w Workspace) ResultsDir() string {
	return filepath.Join(w.Dir, "runs")
}

// WorkspaceResolver locates the active workspace.
type WorkspaceResolver struct {
	homeDir string
}

func NewWorkspaceResolver() *WorkspaceResolver {
	home, _ := os.UserHomeDir()
	return &WorkspaceResolver{homeDir: home}
}

func (r *WorkspaceResolver) Home() Workspace {
	return Workspace{
		Root: r.homeDir,
		Dir:  filepath.Join(r.homeDir, WorkspaceDirName),
	}
}

// Project walks up from the working directory looking for a .sonda
// directory.
func (r *WorkspaceResolver) Project() (Workspace, bool) {
	cwd, err := os.Getwd()
	if err != nil {
		return Workspace{}, false
	}
	return r.findProject(cwd)
}

func (r *WorkspaceResolver) findProject(dir string) (Workspace, bool) {
	for {
		candidate := filepath.Join(dir, WorkspaceDirName)
		info, err := os.Stat(candidate)
		if err == nil && info.IsDir() {
			return Workspace{Root: dir, Dir: candidate}, true
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return Workspace{}, false
		}
		dir = parent
	}
}

// Resolve picks the workspace: an explicit path wins, then the nearest
// project workspace, then home.
func (r *WorkspaceResolver) Resolve(explicit string) Workspace {
	if explicit != "" {
		return Workspace{
			Root: filepath.Dir(explicit),
			Dir:  explicit,
		}
	}
	if ws, ok := r.Project(); ok {
		return ws
	}
	return r.Home()
}

// InitWorkspace creates the workspace directory layout with a default
// config when none exists yet.
func InitWorkspace(ws Workspace) error {
	if err := os.MkdirAll(ws.ResultsDir(), 0755); err != nil {
		return err
	}
	if _, err := os.Stat(ws.ConfigPath()); err == nil {
		return nil
	}
	return SaveConfig(ws, DefaultConfig())
}
