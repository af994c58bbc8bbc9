package sds

import "testing"

func TestDetectCompressionByExtension(t *testing.T) {
	for _, tt := range []struct {
		path string
		want Compression
	}{
		{"run.sds", Plain},
		{"run.sds.gz", Gzip},
		{"run.sds.xz", Lzma},
	} {
		if got := DetectCompression(tt.path); got != tt.want {
			t.Errorf("DetectCompression(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestInitializeOutputRejectsFixedRowCountOnCompressedStream(t *testing.T) {
	l := NewLayout()
	l.DataMode.FixedRowCount = true
	dir := t.TempDir()
	_, err := InitializeOutput(dir+"/out.sds.gz", Gzip, l)
	if err == nil {
		t.Fatal("InitializeOutput with FixedRowCount+Gzip succeeded, want error")
	}
}

func TestInitializeOutputPlainFixedRowCountSucceeds(t *testing.T) {
	l := NewLayout()
	l.DataMode.FixedRowCount = true
	dir := t.TempDir()
	ds, err := InitializeOutput(dir+"/out.sds", Plain, l)
	if err != nil {
		t.Fatalf("InitializeOutput: %v", err)
	}
	defer ds.Terminate(false)
}

func TestCheckUsableRejectsNonEmptyErrorChain(t *testing.T) {
	ds := newTestDataset(t, sampleLayout())
	ds.fail("Probe", Protocol, "forced failure", nil)
	if !ds.Failed() {
		t.Fatal("Dataset should report Failed after fail()")
	}
	if err := ds.SetParameterByName("gain", 1.0); err == nil {
		t.Fatal("operation on a failed Dataset succeeded, want error")
	}
	ds.ClearErrors()
	if ds.Failed() {
		t.Fatal("ClearErrors did not empty the chain")
	}
}

func TestSaveAndRestoreLayoutRoundTrip(t *testing.T) {
	ds := newTestDataset(t, sampleLayout())
	if err := ds.SaveLayout(); err != nil {
		t.Fatalf("SaveLayout: %v", err)
	}
	ds.Layout().DefineColumn(ColumnDef{NamedDef: NamedDef{Name: "extra", Type: TInt32}})
	if _, ok := ds.Layout().IndexOfColumn("extra"); !ok {
		t.Fatal("working layout should see the just-defined column")
	}
	if err := ds.RestoreLayout(); err != nil {
		t.Fatalf("RestoreLayout: %v", err)
	}
	if _, ok := ds.Layout().IndexOfColumn("extra"); ok {
		t.Error("RestoreLayout should have discarded the column defined after SaveLayout")
	}
}

func TestSetDeferSavingLayoutSuppressesSave(t *testing.T) {
	ds := newTestDataset(t, sampleLayout())
	ds.SetDeferSavingLayout(true)
	originalBefore := ds.original
	ds.Layout().DefineColumn(ColumnDef{NamedDef: NamedDef{Name: "extra", Type: TInt32}})
	if err := ds.SaveLayout(); err != nil {
		t.Fatalf("SaveLayout: %v", err)
	}
	if ds.original != originalBefore {
		t.Error("SaveLayout should be a no-op while deferred")
	}
}

func TestDisconnectAndReconnectFile(t *testing.T) {
	dir := t.TempDir()
	ds, err := InitializeOutput(dir+"/out.sds", Plain, NewLayout())
	if err != nil {
		t.Fatalf("InitializeOutput: %v", err)
	}
	defer ds.Terminate(false)

	if err := ds.DisconnectFile(); err != nil {
		t.Fatalf("DisconnectFile: %v", err)
	}
	if err := ds.WriteLayout(); err == nil {
		t.Fatal("WriteLayout on a disconnected Dataset succeeded, want error")
	}
	ds.ClearErrors()
	if err := ds.ReconnectFile(); err != nil {
		t.Fatalf("ReconnectFile: %v", err)
	}
	if err := ds.WriteLayout(); err != nil {
		t.Fatalf("WriteLayout after ReconnectFile: %v", err)
	}
}
