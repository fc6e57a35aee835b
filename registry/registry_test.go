package registry

import (
	"bytes"
	"log/slog"
	"os"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T, fs afero.Fs, opts ...Option) *Registry {
	t.Helper()
	base := []Option{WithFileSystem(fs), WithLogger(slog.New(slog.DiscardHandler))}
	return New(append(base, opts...)...)
}

func writeFile(t *testing.T, fs afero.Fs, path, content string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0644))
}

func readFile(t *testing.T, fs afero.Fs, path string) string {
	t.Helper()
	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	return string(data)
}

func collect(seq func(func(Record) bool)) []string {
	var names []string
	for rec := range seq {
		names = append(names, rec.Name)
	}
	return names
}

func TestRegistryLoadSearchSaveScenario(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "patients.txt", "Bob,A,01/01/1990,01/01/2020\nAnn,A,02/02/1991,02/02/2021\n")

	reg := newTestRegistry(t, fs, WithCategories(Categories{List: 'A', Tree: 'B'}))
	stats, err := reg.Load("patients.txt")
	require.NoError(t, err)
	assert.Equal(t, 2, stats.InList)
	assert.Equal(t, 0, stats.InTree)

	assert.Equal(t, []string{"Bob", "Ann"}, collect(reg.Descending()))

	rec, placement, err := reg.Search("Ann")
	require.NoError(t, err)
	assert.Equal(t, PlacementList, placement)
	assert.Equal(t, Record{Name: "Ann", Category: 'A', BirthDate: "02/02/1991", LastVisit: "02/02/2021"}, rec)

	require.NoError(t, reg.Save("list.txt", "tree.txt"))
	assert.Equal(t, "Bob, A, 01/01/1990, 01/01/2020\nAnn, A, 02/02/1991, 02/02/2021\n", readFile(t, fs, "list.txt"))
	assert.Equal(t, "", readFile(t, fs, "tree.txt"))
}

func TestRegistryLoadRoutesAndSkips(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "in.txt", "\ufeff<Liz, F, 01/01/1985, 10/10/2023>\n"+
		"bad line without delimiter\n"+
		"\n"+
		"<Moises, M, 02/02/1970, 11/11/2023>\r\n"+
		"<Ana, F, 03/03/1999, 12/12/2023>\n"+
		"<Ana, F, 04/04/1999, 12/12/2023>\n"+
		"<Zé, X, 05/05/1950, 01/01/2024>\n")

	reg := newTestRegistry(t, fs)
	stats, err := reg.Load("in.txt")
	require.NoError(t, err)

	assert.Equal(t, LoadStats{Lines: 7, InList: 1, InTree: 2, Blank: 1, Malformed: 2, Duplicates: 1}, stats)
	assert.Equal(t, 3, stats.Loaded())
	assert.Equal(t, []string{"Moises"}, collect(reg.Descending()))
	assert.Equal(t, []string{"Ana", "Liz"}, collect(reg.Ascending()))

	ana, _, err := reg.Search("Ana")
	require.NoError(t, err)
	assert.Equal(t, "03/03/1999", ana.BirthDate, "first occurrence wins")

	for _, match := range reg.Matching("") {
		assert.NotContains(t, match.Record.Name, "bad line")
	}
	_, _, err = reg.Search("bad line without delimiter")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRegistryLoadMissingFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	reg := newTestRegistry(t, fs)

	stats, err := reg.Load("missing.txt")
	assert.ErrorIs(t, err, ErrIO)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Zero(t, stats.Loaded())
	assert.Zero(t, reg.Len())

	// The registry is still usable.
	_, err = reg.Register(Record{Name: "Ann", Category: 'F'})
	assert.NoError(t, err)
}

func TestRegistryLoadWithProgress(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "in.txt", "Ann, F, 01/01/1990, 01/01/2020\nBob, M, 01/01/1990, 01/01/2020\n")

	var out bytes.Buffer
	reg := newTestRegistry(t, fs, WithProgress(&out))
	stats, err := reg.Load("in.txt")
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Loaded())
}

func TestRegistryRegister(t *testing.T) {
	reg := newTestRegistry(t, afero.NewMemMapFs())

	placement, err := reg.Register(Record{Name: "Bob", Category: 'M'})
	require.NoError(t, err)
	assert.Equal(t, PlacementList, placement)

	placement, err = reg.Register(Record{Name: "Liz", Category: 'F'})
	require.NoError(t, err)
	assert.Equal(t, PlacementTree, placement)

	_, err = reg.Register(Record{Name: "Kim", Category: 'X'})
	assert.ErrorIs(t, err, ErrInvalidCategory)

	_, err = reg.Register(Record{Name: "", Category: 'M'})
	assert.ErrorIs(t, err, ErrMalformedRecord)

	_, err = reg.Register(Record{Name: "Bob", Category: 'M'})
	assert.ErrorIs(t, err, ErrDuplicateKey)

	// Uniqueness is per container: the same name is accepted in the other one.
	placement, err = reg.Register(Record{Name: "Bob", Category: 'F'})
	require.NoError(t, err)
	assert.Equal(t, PlacementTree, placement)

	// Search checks the list first.
	_, placement, err = reg.Search("Bob")
	require.NoError(t, err)
	assert.Equal(t, PlacementList, placement)

	assert.Equal(t, 3, reg.Len())
}

func TestRegistrySearchMisses(t *testing.T) {
	reg := newTestRegistry(t, afero.NewMemMapFs())
	_, err := reg.Register(Record{Name: "Liz", Category: 'F'})
	require.NoError(t, err)

	_, placement, err := reg.Search("Nobody")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, PlacementNone, placement)

	_, placement, err = reg.Search("Liz")
	require.NoError(t, err)
	assert.Equal(t, PlacementTree, placement)
}

func TestRegistryUpdateField(t *testing.T) {
	reg := newTestRegistry(t, afero.NewMemMapFs())
	for _, rec := range []Record{
		{Name: "Bob", Category: 'M', BirthDate: "01/01/1990", LastVisit: "01/01/2020"},
		{Name: "Liz", Category: 'F', BirthDate: "02/02/1992", LastVisit: "02/02/2022"},
	} {
		_, err := reg.Register(rec)
		require.NoError(t, err)
	}

	require.NoError(t, reg.UpdateField("Liz", FieldLastVisit, "09/09/2024"))
	liz, _, err := reg.Search("Liz")
	require.NoError(t, err)
	assert.Equal(t, "09/09/2024", liz.LastVisit)

	require.NoError(t, reg.UpdateField("Bob", FieldName, "Robert"))
	_, _, err = reg.Search("Bob")
	assert.ErrorIs(t, err, ErrNotFound)
	robert, placement, err := reg.Search("Robert")
	require.NoError(t, err)
	assert.Equal(t, PlacementList, placement)
	assert.Equal(t, "01/01/1990", robert.BirthDate)

	assert.ErrorIs(t, reg.UpdateField("Nobody", FieldName, "X"), ErrNotFound)
	assert.ErrorIs(t, reg.UpdateField("Liz", FieldCategory, "Q"), ErrInvalidCategory)
	assert.ErrorIs(t, reg.UpdateField("Liz", Field(99), "Q"), ErrInvalidField)
}

func TestRegistryHandleGoesStale(t *testing.T) {
	reg := newTestRegistry(t, afero.NewMemMapFs())
	for _, rec := range []Record{
		{Name: "Bob", Category: 'M'},
		{Name: "Liz", Category: 'F'},
	} {
		_, err := reg.Register(rec)
		require.NoError(t, err)
	}

	bob, err := reg.Locate("Bob")
	require.NoError(t, err)
	liz, err := reg.Locate("Liz")
	require.NoError(t, err)
	assert.Equal(t, PlacementList, bob.Placement())
	assert.Equal(t, PlacementTree, liz.Placement())

	require.NoError(t, bob.Apply(FieldBirthDate, "01/01/1990"))
	require.NoError(t, bob.Apply(FieldLastVisit, "02/02/2020"))

	_, err = reg.Register(Record{Name: "Carl", Category: 'M'})
	require.NoError(t, err)

	assert.ErrorIs(t, bob.Apply(FieldLastVisit, "03/03/2023"), ErrStaleHandle)
	_, err = bob.Record()
	assert.ErrorIs(t, err, ErrStaleHandle)

	// The tree was not touched, so its handle is still good.
	require.NoError(t, liz.Apply(FieldLastVisit, "04/04/2024"))
	got, err := liz.Record()
	require.NoError(t, err)
	assert.Equal(t, "04/04/2024", got.LastVisit)

	rec, _, err := reg.Search("Bob")
	require.NoError(t, err)
	assert.Equal(t, "02/02/2020", rec.LastVisit)
}

func TestRegistryRoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "in.txt", "<Moises, M, 02/02/1970, 11/11/2023>\n"+
		"<Liz, F, 01/01/1985, 10/10/2023>\n"+
		"<Ana, F, 03/03/1999, 12/12/2023>\n"+
		"<Carlos, M, 04/04/1960, 01/02/2024>\n"+
		"<Beatriz, F, 05/05/2001, 03/03/2024>\n")

	reg := newTestRegistry(t, fs)
	_, err := reg.Load("in.txt")
	require.NoError(t, err)
	require.NoError(t, reg.Persist(Targets{ListPath: "m.txt", TreePath: "f.txt", CombinedPath: "all.txt"}))

	assert.Equal(t, "Moises, M, 02/02/1970, 11/11/2023\nCarlos, M, 04/04/1960, 01/02/2024\n", readFile(t, fs, "m.txt"))
	assert.Equal(t, "Ana, F, 03/03/1999, 12/12/2023\nBeatriz, F, 05/05/2001, 03/03/2024\nLiz, F, 01/01/1985, 10/10/2023\n", readFile(t, fs, "f.txt"))
	assert.Equal(t, readFile(t, fs, "m.txt")+readFile(t, fs, "f.txt"), readFile(t, fs, "all.txt"))

	reloaded := newTestRegistry(t, fs)
	_, err = reloaded.Load("m.txt")
	require.NoError(t, err)
	_, err = reloaded.Load("f.txt")
	require.NoError(t, err)

	assert.Equal(t, collect(reg.Descending()), collect(reloaded.Descending()))
	assert.Equal(t, collect(reg.Ascending()), collect(reloaded.Ascending()))
	for rec := range reg.Ascending() {
		got, _, err := reloaded.Search(rec.Name)
		require.NoError(t, err)
		assert.Equal(t, rec, got)
	}

	combined := newTestRegistry(t, fs)
	stats, err := combined.Load("all.txt")
	require.NoError(t, err)
	assert.Equal(t, 5, stats.Loaded())
}

type failingFs struct {
	afero.Fs
	failPath string
}

func (f failingFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	if name == f.failPath {
		return nil, &os.PathError{Op: "open", Path: name, Err: os.ErrPermission}
	}
	return f.Fs.OpenFile(name, flag, perm)
}

func TestRegistrySaveReportsFailedPathOnly(t *testing.T) {
	mem := afero.NewMemMapFs()
	reg := newTestRegistry(t, failingFs{Fs: mem, failPath: "list.txt"})
	_, err := reg.Register(Record{Name: "Bob", Category: 'M', BirthDate: "01/01/1990", LastVisit: "01/01/2020"})
	require.NoError(t, err)
	_, err = reg.Register(Record{Name: "Liz", Category: 'F', BirthDate: "02/02/1992", LastVisit: "02/02/2022"})
	require.NoError(t, err)

	err = reg.Save("list.txt", "tree.txt")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIO)

	var saveErr *SaveError
	require.ErrorAs(t, err, &saveErr)
	assert.Contains(t, saveErr.Failures, "list.txt")
	assert.NotContains(t, saveErr.Failures, "tree.txt")
	assert.ErrorIs(t, saveErr.Failures["list.txt"], os.ErrPermission)

	assert.Equal(t, "Liz, F, 02/02/1992, 02/02/2022\n", readFile(t, mem, "tree.txt"))
}

func TestRegistrySaveCombinedFailure(t *testing.T) {
	reg := newTestRegistry(t, afero.NewReadOnlyFs(afero.NewMemMapFs()))
	err := reg.SaveCombined("all.txt")
	assert.ErrorIs(t, err, ErrIO)
}

func TestRegistryMatching(t *testing.T) {
	reg := newTestRegistry(t, afero.NewMemMapFs())
	for _, rec := range []Record{
		{Name: "Ana", Category: 'M'},
		{Name: "Andre", Category: 'M'},
		{Name: "Anabel", Category: 'F'},
		{Name: "Amanda", Category: 'F'},
		{Name: "Bruno", Category: 'M'},
	} {
		_, err := reg.Register(rec)
		require.NoError(t, err)
	}

	var names []string
	for _, match := range reg.Matching("An") {
		names = append(names, match.Record.Name)
	}
	assert.Equal(t, []string{"Andre", "Ana", "Anabel"}, names)
}

func TestRegistryMatchingHighBytes(t *testing.T) {
	reg := newTestRegistry(t, afero.NewMemMapFs())
	for _, name := range []string{"An\U0001F600", "Ann", "\xf0Raw", "\U0001F600Zed"} {
		_, err := reg.Register(Record{Name: name, Category: 'F'})
		require.NoError(t, err)
	}

	var names []string
	for _, match := range reg.Matching("") {
		names = append(names, match.Record.Name)
	}
	assert.Equal(t, []string{"Ann", "An\U0001F600", "\xf0Raw", "\U0001F600Zed"}, names)
}

// A category edit leaves the record where it was registered.
func TestRegistryMatchingReportsContainer(t *testing.T) {
	reg := newTestRegistry(t, afero.NewMemMapFs())
	_, err := reg.Register(Record{Name: "Ann", Category: 'M'})
	require.NoError(t, err)
	_, err = reg.Register(Record{Name: "Anna", Category: 'F'})
	require.NoError(t, err)

	require.NoError(t, reg.UpdateField("Ann", FieldCategory, "F"))

	matches := reg.Matching("Ann")
	require.Len(t, matches, 2)
	assert.Equal(t, Match{Record: Record{Name: "Ann", Category: 'F'}, Placement: PlacementList}, matches[0])
	assert.Equal(t, PlacementTree, matches[1].Placement)
}

func TestRegistryRenameStaysSearchable(t *testing.T) {
	reg := newTestRegistry(t, afero.NewMemMapFs())
	_, err := reg.Register(Record{Name: "Bob", Category: 'M'})
	require.NoError(t, err)

	require.NoError(t, reg.UpdateField("Bob", FieldName, "Robert"))

	rec, placement, err := reg.Search("Robert")
	require.NoError(t, err)
	assert.Equal(t, "Robert", rec.Name)
	assert.Equal(t, PlacementList, placement)
}
