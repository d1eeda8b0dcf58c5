package vfs_test

import (
	"errors"
	"slices"
	"testing"

	"vsh/internal/vfs"
)

// fixture builds:
//
//	/
//	├── file1 "one"
//	└── sub1/
//	    ├── file3 "three"
//	    └── sub2/
//	        └── file2 "two"
type fixture struct {
	tree                *vfs.Tree
	root, sub1, sub2    vfs.NodeID
	file1, file2, file3 vfs.NodeID
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	tr := vfs.NewTree()
	f := fixture{tree: tr, root: tr.Root()}
	f.file1 = mustCreate(t, tr, f.root, vfs.KindFile, "file1")
	f.sub1 = mustCreate(t, tr, f.root, vfs.KindDirectory, "sub1")
	f.sub2 = mustCreate(t, tr, f.sub1, vfs.KindDirectory, "sub2")
	f.file2 = mustCreate(t, tr, f.sub2, vfs.KindFile, "file2")
	f.file3 = mustCreate(t, tr, f.sub1, vfs.KindFile, "file3")
	mustWrite(t, tr, f.file1, "one")
	mustWrite(t, tr, f.file2, "two")
	mustWrite(t, tr, f.file3, "three")
	return f
}

func mustCreate(t *testing.T, tr *vfs.Tree, parent vfs.NodeID, kind vfs.Kind, name string) vfs.NodeID {
	t.Helper()
	id, err := tr.Create(parent, kind, name)
	if err != nil {
		t.Fatalf("Create(%q) error = %v", name, err)
	}
	return id
}

func mustWrite(t *testing.T, tr *vfs.Tree, id vfs.NodeID, content string) {
	t.Helper()
	if err := tr.WriteContent(id, content); err != nil {
		t.Fatalf("WriteContent() error = %v", err)
	}
}

func childNames(tr *vfs.Tree, dir vfs.NodeID) []string {
	var names []string
	for _, c := range tr.Children(dir) {
		names = append(names, tr.Name(c))
	}
	return names
}

func TestNewTree(t *testing.T) {
	tr := vfs.NewTree()
	root := tr.Root()

	if got := tr.Name(root); got != vfs.RootName {
		t.Errorf("Name(root) = %q, want %q", got, vfs.RootName)
	}
	if got := tr.Parent(root); got != root {
		t.Errorf("Parent(root) = %v, want root", got)
	}
	if !tr.IsDir(root) {
		t.Error("root is not a directory")
	}
	if got := tr.Len(); got != 1 {
		t.Errorf("Len() = %d, want 1", got)
	}
	if got := tr.PathTo(root, "/").String(); got != "/" {
		t.Errorf("PathTo(root) = %q, want /", got)
	}
	if !tr.Attached(root) {
		t.Error("Attached(root) = false")
	}
}

func TestTree_Create(t *testing.T) {
	tests := []struct {
		name      string
		kind      vfs.Kind
		childName string
		wantErr   error
	}{
		{name: "new file", kind: vfs.KindFile, childName: "notes", wantErr: nil},
		{name: "new directory", kind: vfs.KindDirectory, childName: "docs", wantErr: nil},
		{name: "duplicate file name as directory", kind: vfs.KindDirectory, childName: "file1", wantErr: vfs.ErrDuplicate},
		{name: "duplicate directory name as file", kind: vfs.KindFile, childName: "sub1", wantErr: vfs.ErrDuplicate},
		{name: "dot in name", kind: vfs.KindFile, childName: "a.txt", wantErr: vfs.ErrIllegalName},
		{name: "slash in name", kind: vfs.KindDirectory, childName: "a/b", wantErr: vfs.ErrIllegalName},
		{name: "tilde in name", kind: vfs.KindFile, childName: "~home", wantErr: vfs.ErrIllegalName},
		{name: "empty name", kind: vfs.KindFile, childName: "", wantErr: vfs.ErrIllegalName},
		{name: "unicode name", kind: vfs.KindFile, childName: "résumé", wantErr: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			before := f.tree.Len()

			id, err := f.tree.Create(f.root, tt.kind, tt.childName)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Create() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				if f.tree.Len() != before {
					t.Errorf("Len() = %d after failed create, want %d", f.tree.Len(), before)
				}
				return
			}
			if f.tree.Kind(id) != tt.kind {
				t.Errorf("Kind() = %v, want %v", f.tree.Kind(id), tt.kind)
			}
			if f.tree.Parent(id) != f.root {
				t.Error("new node is not a child of root")
			}
			if got, ok := f.tree.Child(f.root, tt.childName); !ok || got != id {
				t.Errorf("Child(%q) = %v, %v", tt.childName, got, ok)
			}
		})
	}
}

func TestTree_CreateUnderFile(t *testing.T) {
	f := newFixture(t)
	_, err := f.tree.Create(f.file1, vfs.KindFile, "x")
	if !errors.Is(err, vfs.ErrNotADirectory) {
		t.Errorf("Create() under file error = %v, want ErrNotADirectory", err)
	}
}

func TestTree_ChildrenKeepInsertionOrder(t *testing.T) {
	tr := vfs.NewTree()
	for _, n := range []string{"zeta", "alpha", "mid"} {
		mustCreate(t, tr, tr.Root(), vfs.KindFile, n)
	}
	want := []string{"zeta", "alpha", "mid"}
	if got := childNames(tr, tr.Root()); !slices.Equal(got, want) {
		t.Errorf("children = %q, want %q", got, want)
	}
}

func TestTree_Content(t *testing.T) {
	f := newFixture(t)

	got, err := f.tree.Content(f.file2)
	if err != nil {
		t.Fatalf("Content() error = %v", err)
	}
	if got != "two" {
		t.Errorf("Content() = %q, want %q", got, "two")
	}

	if err := f.tree.AppendContent(f.file2, "\nmore"); err != nil {
		t.Fatalf("AppendContent() error = %v", err)
	}
	got, _ = f.tree.Content(f.file2)
	if got != "two\nmore" {
		t.Errorf("Content() after append = %q", got)
	}

	if _, err := f.tree.Content(f.sub1); !errors.Is(err, vfs.ErrNotAFile) {
		t.Errorf("Content(dir) error = %v, want ErrNotAFile", err)
	}
	if err := f.tree.WriteContent(f.sub1, "x"); !errors.Is(err, vfs.ErrNotAFile) {
		t.Errorf("WriteContent(dir) error = %v, want ErrNotAFile", err)
	}
}

func TestTree_PathTo(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name string
		id   vfs.NodeID
		sep  string
		want string
	}{
		{name: "root", id: f.root, sep: "/", want: "/"},
		{name: "nested file", id: f.file2, sep: "/", want: "/sub1/sub2/file2/"},
		{name: "custom separator", id: f.file2, sep: "~:", want: "~:sub1~:sub2~:file2~:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.tree.PathTo(tt.id, tt.sep).String(); got != tt.want {
				t.Errorf("PathTo() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTree_Remove(t *testing.T) {
	f := newFixture(t)
	before := f.tree.Len()

	f.tree.Remove(f.root, "sub1")

	if _, ok := f.tree.Child(f.root, "sub1"); ok {
		t.Error("sub1 still present after Remove")
	}
	// sub1, sub2, file2, file3
	if got, want := f.tree.Len(), before-4; got != want {
		t.Errorf("Len() = %d, want %d", got, want)
	}
	if f.tree.Valid(f.file2) {
		t.Error("descendant ID still valid after Remove")
	}

	// Removing something absent is a no-op.
	f.tree.Remove(f.root, "nothing")
	if got := childNames(f.tree, f.root); !slices.Equal(got, []string{"file1"}) {
		t.Errorf("children = %q, want [file1]", got)
	}
}

func TestTree_StaleIDAfterSlotReuse(t *testing.T) {
	tr := vfs.NewTree()
	old := mustCreate(t, tr, tr.Root(), vfs.KindFile, "a")
	tr.Remove(tr.Root(), "a")
	fresh := mustCreate(t, tr, tr.Root(), vfs.KindFile, "b")

	if tr.Valid(old) {
		t.Error("released ID is still valid")
	}
	if old == fresh {
		t.Error("reused slot produced an identical ID")
	}
	if err := tr.WriteContent(old, "x"); !errors.Is(err, vfs.ErrInvalidNode) {
		t.Errorf("WriteContent(stale) error = %v, want ErrInvalidNode", err)
	}
	if got, _ := tr.Content(fresh); got != "" {
		t.Errorf("new node inherited content %q", got)
	}
}

func TestTree_Rename(t *testing.T) {
	tests := []struct {
		name    string
		target  func(f fixture) vfs.NodeID
		newName string
		wantErr error
	}{
		{name: "file", target: func(f fixture) vfs.NodeID { return f.file1 }, newName: "renamed", wantErr: nil},
		{name: "same name", target: func(f fixture) vfs.NodeID { return f.file1 }, newName: "file1", wantErr: nil},
		{name: "sibling collision", target: func(f fixture) vfs.NodeID { return f.file1 }, newName: "sub1", wantErr: vfs.ErrDuplicate},
		{name: "illegal name", target: func(f fixture) vfs.NodeID { return f.sub2 }, newName: "a?b", wantErr: vfs.ErrIllegalName},
		{name: "root", target: func(f fixture) vfs.NodeID { return f.root }, newName: "top", wantErr: vfs.ErrIllegalOperation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			id := tt.target(f)
			oldName := f.tree.Name(id)

			err := f.tree.Rename(id, tt.newName)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Rename() error = %v, want %v", err, tt.wantErr)
			}
			want := tt.newName
			if tt.wantErr != nil {
				want = oldName
			}
			if got := f.tree.Name(id); got != want {
				t.Errorf("Name() = %q, want %q", got, want)
			}
		})
	}
}

func TestTree_DeepCopy(t *testing.T) {
	f := newFixture(t)

	cp, err := f.tree.DeepCopy(f.sub1)
	if err != nil {
		t.Fatalf("DeepCopy() error = %v", err)
	}
	if f.tree.Attached(cp) {
		t.Error("copy should start detached")
	}
	if !f.tree.Equal(cp, f.sub1) {
		t.Error("copy is not Equal to the original")
	}

	if err := f.tree.Rename(cp, "sub1copy"); err != nil {
		t.Fatalf("Rename() error = %v", err)
	}
	if err := f.tree.Insert(cp, f.root); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	// Mutating the copy leaves the original alone.
	sub2copy, _ := f.tree.Child(cp, "sub2")
	file2copy, _ := f.tree.Child(sub2copy, "file2")
	mustWrite(t, f.tree, file2copy, "changed")
	mustCreate(t, f.tree, sub2copy, vfs.KindFile, "extra")

	if got, _ := f.tree.Content(f.file2); got != "two" {
		t.Errorf("original content = %q, want %q", got, "two")
	}
	if got := childNames(f.tree, f.sub2); !slices.Equal(got, []string{"file2"}) {
		t.Errorf("original children = %q, want [file2]", got)
	}
	if got := f.tree.PathTo(file2copy, "/").String(); got != "/sub1copy/sub2/file2/" {
		t.Errorf("PathTo(copy) = %q", got)
	}
}

func TestTree_DeepCopyDiscard(t *testing.T) {
	f := newFixture(t)
	before := f.tree.Len()

	cp, err := f.tree.DeepCopy(f.sub1)
	if err != nil {
		t.Fatalf("DeepCopy() error = %v", err)
	}
	if got, want := f.tree.Len(), before+4; got != want {
		t.Errorf("Len() after copy = %d, want %d", got, want)
	}
	f.tree.Discard(cp)
	if got := f.tree.Len(); got != before {
		t.Errorf("Len() after Discard = %d, want %d", got, before)
	}

	// Discard ignores attached nodes.
	f.tree.Discard(f.sub1)
	if !f.tree.Valid(f.sub1) {
		t.Error("Discard released an attached node")
	}
}

func TestTree_InsertDuplicate(t *testing.T) {
	f := newFixture(t)
	cp, err := f.tree.DeepCopy(f.file1)
	if err != nil {
		t.Fatalf("DeepCopy() error = %v", err)
	}
	if err := f.tree.Insert(cp, f.root); !errors.Is(err, vfs.ErrDuplicate) {
		t.Errorf("Insert() error = %v, want ErrDuplicate", err)
	}
	if err := f.tree.Insert(f.file3, f.root); err == nil {
		t.Error("Insert() of an attached node should fail")
	}
}

func TestTree_Clear(t *testing.T) {
	f := newFixture(t)
	deeper := mustCreate(t, f.tree, f.sub2, vfs.KindDirectory, "deeper")
	mustCreate(t, f.tree, deeper, vfs.KindFile, "leaf")

	detached, err := f.tree.Clear(f.sub1)
	if err != nil {
		t.Fatalf("Clear() error = %v", err)
	}

	other := vfs.NewTree()
	for _, tt := range []struct {
		name string
		id   vfs.NodeID
	}{
		{name: "sub1", id: f.sub1},
		{name: "sub2", id: f.sub2},
		{name: "deeper", id: deeper},
	} {
		empty := mustCreate(t, other, other.Root(), vfs.KindDirectory, tt.name)
		if !vfs.EqualTrees(f.tree, tt.id, other, empty) {
			t.Errorf("%s is not equal to a new empty directory after Clear", tt.name)
		}
	}
	if got := childNames(f.tree, f.sub1); len(got) != 0 {
		t.Errorf("children of cleared directory = %v", got)
	}
	if f.tree.Attached(f.sub2) || f.tree.Attached(deeper) {
		t.Error("former descendants are still attached")
	}
	// sub2, file2, file3, deeper, leaf
	if len(detached) != 5 {
		t.Errorf("Clear() returned %d nodes, want 5", len(detached))
	}

	for _, id := range detached {
		f.tree.Discard(id)
	}
	if f.tree.Valid(f.sub2) || f.tree.Valid(f.file2) {
		t.Error("discarded descendants are still valid")
	}
	// root, file1, sub1
	if got := f.tree.Len(); got != 3 {
		t.Errorf("Len() = %d, want 3", got)
	}

	if _, err := f.tree.Clear(f.file1); !errors.Is(err, vfs.ErrNotADirectory) {
		t.Errorf("Clear(file) error = %v, want ErrNotADirectory", err)
	}
}

func TestTree_Move(t *testing.T) {
	tests := []struct {
		name     string
		source   func(f fixture) vfs.NodeID
		dest     func(f fixture) vfs.NodeID
		newName  string
		cwd      func(f fixture) vfs.NodeID
		wantErr  error
		wantPath string
	}{
		{
			name:     "directory up to root",
			source:   func(f fixture) vfs.NodeID { return f.sub2 },
			dest:     func(f fixture) vfs.NodeID { return f.root },
			newName:  "sub2",
			cwd:      func(f fixture) vfs.NodeID { return f.root },
			wantPath: "/sub2/",
		},
		{
			name:     "file with rename",
			source:   func(f fixture) vfs.NodeID { return f.file1 },
			dest:     func(f fixture) vfs.NodeID { return f.sub2 },
			newName:  "moved",
			cwd:      func(f fixture) vfs.NodeID { return f.root },
			wantPath: "/sub1/sub2/moved/",
		},
		{
			name:     "file while cwd is its parent",
			source:   func(f fixture) vfs.NodeID { return f.file2 },
			dest:     func(f fixture) vfs.NodeID { return f.root },
			newName:  "file2",
			cwd:      func(f fixture) vfs.NodeID { return f.sub2 },
			wantPath: "/file2/",
		},
		{
			name:    "directory into itself",
			source:  func(f fixture) vfs.NodeID { return f.sub1 },
			dest:    func(f fixture) vfs.NodeID { return f.sub1 },
			newName: "sub1",
			cwd:     func(f fixture) vfs.NodeID { return f.root },
			wantErr: vfs.ErrIllegalOperation,
		},
		{
			name:    "directory into its descendant",
			source:  func(f fixture) vfs.NodeID { return f.sub1 },
			dest:    func(f fixture) vfs.NodeID { return f.sub2 },
			newName: "sub1",
			cwd:     func(f fixture) vfs.NodeID { return f.root },
			wantErr: vfs.ErrIllegalOperation,
		},
		{
			name:    "cwd inside source",
			source:  func(f fixture) vfs.NodeID { return f.sub1 },
			dest:    func(f fixture) vfs.NodeID { return f.root },
			newName: "renamed",
			cwd:     func(f fixture) vfs.NodeID { return f.sub2 },
			wantErr: vfs.ErrResourceBusy,
		},
		{
			name:    "cwd is source",
			source:  func(f fixture) vfs.NodeID { return f.sub2 },
			dest:    func(f fixture) vfs.NodeID { return f.root },
			newName: "sub2",
			cwd:     func(f fixture) vfs.NodeID { return f.sub2 },
			wantErr: vfs.ErrResourceBusy,
		},
		{
			name:    "name taken at destination",
			source:  func(f fixture) vfs.NodeID { return f.file3 },
			dest:    func(f fixture) vfs.NodeID { return f.root },
			newName: "file1",
			cwd:     func(f fixture) vfs.NodeID { return f.root },
			wantErr: vfs.ErrDuplicate,
		},
		{
			name:    "illegal new name",
			source:  func(f fixture) vfs.NodeID { return f.file3 },
			dest:    func(f fixture) vfs.NodeID { return f.root },
			newName: "a.b",
			cwd:     func(f fixture) vfs.NodeID { return f.root },
			wantErr: vfs.ErrIllegalName,
		},
		{
			name:    "destination is a file",
			source:  func(f fixture) vfs.NodeID { return f.file3 },
			dest:    func(f fixture) vfs.NodeID { return f.file1 },
			newName: "file3",
			cwd:     func(f fixture) vfs.NodeID { return f.root },
			wantErr: vfs.ErrNotADirectory,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			src := tt.source(f)
			oldPath := f.tree.PathTo(src, "/").String()
			before := f.tree.Len()

			err := f.tree.Move(src, tt.dest(f), tt.newName, tt.cwd(f))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Move() error = %v, want %v", err, tt.wantErr)
			}
			if f.tree.Len() != before {
				t.Errorf("Len() = %d, want %d", f.tree.Len(), before)
			}

			got := f.tree.PathTo(src, "/").String()
			if tt.wantErr != nil {
				if got != oldPath {
					t.Errorf("failed move changed path to %q, want %q", got, oldPath)
				}
				return
			}
			if got != tt.wantPath {
				t.Errorf("PathTo() = %q, want %q", got, tt.wantPath)
			}
			if !f.tree.Attached(src) {
				t.Error("moved node is detached")
			}
		})
	}
}

func TestTree_Walk(t *testing.T) {
	f := newFixture(t)

	var got []string
	var depths []int
	for id, depth := range f.tree.Walk(f.root) {
		got = append(got, f.tree.Name(id))
		depths = append(depths, depth)
	}

	wantNames := []string{"/", "file1", "sub1", "sub2", "file2", "file3"}
	wantDepths := []int{0, 1, 1, 2, 3, 2}
	if !slices.Equal(got, wantNames) {
		t.Errorf("Walk() names = %q, want %q", got, wantNames)
	}
	if !slices.Equal(depths, wantDepths) {
		t.Errorf("Walk() depths = %v, want %v", depths, wantDepths)
	}

	// Early break stops the walk.
	n := 0
	for range f.tree.Walk(f.root) {
		n++
		if n == 2 {
			break
		}
	}
	if n != 2 {
		t.Errorf("walk visited %d nodes after break, want 2", n)
	}
}

func TestEqualTrees(t *testing.T) {
	build := func(order []string, content string) (*vfs.Tree, vfs.NodeID) {
		tr := vfs.NewTree()
		d := mustCreate(t, tr, tr.Root(), vfs.KindDirectory, "d")
		for _, n := range order {
			id := mustCreate(t, tr, d, vfs.KindFile, n)
			mustWrite(t, tr, id, content)
		}
		return tr, d
	}

	ta, a := build([]string{"x", "y"}, "c")
	tb, b := build([]string{"y", "x"}, "c")
	if !vfs.EqualTrees(ta, a, tb, b) {
		t.Error("child order should not affect equality")
	}

	tc, c := build([]string{"x", "y"}, "other")
	if vfs.EqualTrees(ta, a, tc, c) {
		t.Error("different content compared equal")
	}

	td, d := build([]string{"x"}, "c")
	if vfs.EqualTrees(ta, a, td, d) {
		t.Error("different child count compared equal")
	}

	te := vfs.NewTree()
	e := mustCreate(t, te, te.Root(), vfs.KindFile, "d")
	if vfs.EqualTrees(ta, a, te, e) {
		t.Error("directory compared equal to a file of the same name")
	}
}

func TestValidateName(t *testing.T) {
	for _, c := range "!@#$%^&*(){}~|<>?./" {
		name := "a" + string(c) + "b"
		if err := vfs.ValidateName(name); !errors.Is(err, vfs.ErrIllegalName) {
			t.Errorf("ValidateName(%q) error = %v, want ErrIllegalName", name, err)
		}
	}
	for _, name := range []string{"a", "file_1", "with-dash", "with space", "日本"} {
		if err := vfs.ValidateName(name); err != nil {
			t.Errorf("ValidateName(%q) error = %v", name, err)
		}
	}
}
