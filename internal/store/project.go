package store

// UpsertProject records a project's root path and indexing timestamp.
func (s *Store) UpsertProject(name, rootPath string) error {
	_, err := s.q.Exec(
		`INSERT INTO projects(name, indexed_at, root_path) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET indexed_at=excluded.indexed_at, root_path=excluded.root_path`,
		name, Now(), rootPath,
	)
	return err
}

// Project represents an indexed project.
type Project struct {
	Name      string
	IndexedAt string
	RootPath  string
}

// GetProject returns a project by name.
func (s *Store) GetProject(name string) (*Project, error) {
	var p Project
	err := s.q.QueryRow(`SELECT name, indexed_at, root_path FROM projects WHERE name = ?`, name).
		Scan(&p.Name, &p.IndexedAt, &p.RootPath)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListProjects returns every indexed project, ordered by name.
func (s *Store) ListProjects() ([]*Project, error) {
	rows, err := s.q.Query(`SELECT name, indexed_at, root_path FROM projects ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Project
	for rows.Next() {
		var p Project
		if err := rows.Scan(&p.Name, &p.IndexedAt, &p.RootPath); err != nil {
			return nil, err
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

// DeleteProject deletes a project and all its nodes, edges, and file hashes
// (ON DELETE CASCADE on the foreign keys does the rest).
func (s *Store) DeleteProject(name string) error {
	_, err := s.q.Exec(`DELETE FROM projects WHERE name = ?`, name)
	return err
}

// FileHash pairs a project-relative path with its content hash.
type FileHash struct {
	Project string
	RelPath string
	SHA256  string
}

// UpsertFileHash stores a single file's content hash.
func (s *Store) UpsertFileHash(project, relPath, sha256 string) error {
	_, err := s.q.Exec(
		`INSERT INTO file_hashes(project, rel_path, sha256) VALUES (?, ?, ?)
		 ON CONFLICT(project, rel_path) DO UPDATE SET sha256=excluded.sha256`,
		project, relPath, sha256,
	)
	return err
}

// GetFileHashes returns the stored relPath -> hash map for a project.
func (s *Store) GetFileHashes(project string) (map[string]string, error) {
	rows, err := s.q.Query(`SELECT rel_path, sha256 FROM file_hashes WHERE project = ?`, project)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var relPath, hash string
		if err := rows.Scan(&relPath, &hash); err != nil {
			return nil, err
		}
		out[relPath] = hash
	}
	return out, rows.Err()
}

// UpsertFileHashBatch records the current hash for each file, one INSERT per file.
func (s *Store) UpsertFileHashBatch(hashes []FileHash) error {
	for _, h := range hashes {
		if _, err := s.q.Exec(
			`INSERT INTO file_hashes(project, rel_path, sha256) VALUES (?, ?, ?)
			 ON CONFLICT(project, rel_path) DO UPDATE SET sha256=excluded.sha256`,
			h.Project, h.RelPath, h.SHA256,
		); err != nil {
			return err
		}
	}
	return nil
}

// DeleteFileHash removes the stored hash for a single file (e.g. after deletion).
func (s *Store) DeleteFileHash(project, relPath string) error {
	_, err := s.q.Exec(`DELETE FROM file_hashes WHERE project = ? AND rel_path = ?`, project, relPath)
	return err
}

// ListFilesForProject returns the distinct file_path values recorded against a project's nodes.
func (s *Store) ListFilesForProject(project string) ([]string, error) {
	rows, err := s.q.Query(
		`SELECT DISTINCT file_path FROM nodes WHERE project = ? AND file_path != ''`, project,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// CountEdgesByType counts edges of a given type for a project.
func (s *Store) CountEdgesByType(project, edgeType string) (int, error) {
	var n int
	err := s.q.QueryRow(
		`SELECT COUNT(*) FROM edges WHERE project = ? AND type = ?`, project, edgeType,
	).Scan(&n)
	return n, err
}
