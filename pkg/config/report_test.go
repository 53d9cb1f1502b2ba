package config

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportSection_Defaults(t *testing.T) {
	s := NewReportSection()

	assert.Equal(t, SectionIDReport, s.ID())
	assert.NotEmpty(t, s.Title())
	assert.False(t, s.AutoOpen())
	assert.False(t, s.CopyPath())
	assert.NoError(t, s.Validate())
}

func TestReportSection_SetData(t *testing.T) {
	tests := []struct {
		name     string
		data     map[string]any
		wantErr  bool
		wantOpen bool
		wantCopy bool
	}{
		{name: "nil is ignored", data: nil},
		{name: "both set", data: map[string]any{"auto_open_report": true, "copy_report_path": true}, wantOpen: true, wantCopy: true},
		{name: "unknown keys ignored", data: map[string]any{"auto_open_report": true, "theme": "dark"}, wantOpen: true},
		{name: "wrong type", data: map[string]any{"auto_open_report": "yes"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewReportSection()
			err := s.SetData(tt.data)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantOpen, s.AutoOpen())
			assert.Equal(t, tt.wantCopy, s.CopyPath())
		})
	}
}

func TestReportSection_Reset(t *testing.T) {
	s := NewReportSection()
	s.SetAutoOpen(true)
	s.SetCopyPath(true)

	s.Reset()

	assert.Equal(t, map[string]any{"auto_open_report": false, "copy_report_path": false}, s.Data())
}

func TestResolveAutoOpen(t *testing.T) {
	yes, no := true, false
	persisted := NewReportSection()
	persisted.SetAutoOpen(true)

	tests := []struct {
		name    string
		flag    *bool
		section *ReportSection
		want    bool
	}{
		{name: "no flag, no section", want: false},
		{name: "no flag uses persisted", section: persisted, want: true},
		{name: "flag true beats default", flag: &yes, section: NewReportSection(), want: true},
		{name: "flag false beats persisted", flag: &no, section: persisted, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveAutoOpen(tt.flag, tt.section))
		})
	}
}

func TestOpenReportSettings(t *testing.T) {
	t.Run("missing file gives defaults", func(t *testing.T) {
		section, manager, err := OpenReportSettings(filepath.Join(t.TempDir(), "config.json"))
		require.NoError(t, err)
		require.NotNil(t, manager)
		assert.False(t, section.AutoOpen())
	})

	t.Run("persisted value is loaded and saved back", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.json")
		writeStoreFile(t, path, map[string]map[string]interface{}{
			SectionIDReport: {"auto_open_report": true},
		})

		section, manager, err := OpenReportSettings(path)
		require.NoError(t, err)
		assert.True(t, section.AutoOpen())

		section.SetCopyPath(true)
		require.NoError(t, manager.SaveAll())

		reloaded, _, err := OpenReportSettings(path)
		require.NoError(t, err)
		assert.True(t, reloaded.AutoOpen())
		assert.True(t, reloaded.CopyPath())
	})

	t.Run("invalid stored data falls back to defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.json")
		writeStoreFile(t, path, map[string]map[string]interface{}{
			SectionIDReport: {"auto_open_report": "sometimes", "copy_report_path": true},
		})

		section, _, err := OpenReportSettings(path)
		require.Error(t, err)
		assert.False(t, section.AutoOpen())
		assert.False(t, section.CopyPath())
	})
}

func TestManager_RegisterSection(t *testing.T) {
	store, err := NewFileStore(filepath.Join(t.TempDir(), "config.json"))
	require.NoError(t, err)
	m := NewManager(store)

	require.NoError(t, m.RegisterSection(NewReportSection()))
	assert.Error(t, m.RegisterSection(NewReportSection()))
	assert.Error(t, m.RegisterSection(nil))

	got, ok := m.Section(SectionIDReport)
	require.True(t, ok)
	assert.Equal(t, SectionIDReport, got.ID())
	assert.Same(t, store, m.Store())
}

func TestReportSection_ThreadSafety(t *testing.T) {
	s := NewReportSection()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			s.SetAutoOpen(i%2 == 0)
		}(i)
		go func() {
			defer wg.Done()
			_ = s.Data()
			_ = ResolveAutoOpen(nil, s)
		}()
	}
	wg.Wait()
}
