package config

import (
	"database/sql"
	"log"
	"os"

	_ "github.com/mattn/go-sqlite3"
)

const DatabasePath = "./data/androidmirror.db"

const schema = `
CREATE TABLE IF NOT EXISTS input_settings (
	device_id                TEXT PRIMARY KEY,
	shortcut_mods            INTEGER NOT NULL,
	forward_all_clicks       INTEGER NOT NULL,
	legacy_paste             INTEGER NOT NULL,
	clipboard_autosync       INTEGER NOT NULL,
	forward_game_controllers INTEGER NOT NULL,
	touchmap_file            TEXT NOT NULL,
	right_click              INTEGER NOT NULL,
	middle_click             INTEGER NOT NULL,
	click4                   INTEGER NOT NULL,
	click5                   INTEGER NOT NULL
);
`

// InputSettings is the persisted per-device input configuration. Binding
// and modifier values use the service package's numeric encodings.
type InputSettings struct {
	DeviceID               string `json:"device_id"`
	ShortcutMods           uint8  `json:"shortcut_mods"`
	ForwardAllClicks       bool   `json:"forward_all_clicks"`
	LegacyPaste            bool   `json:"legacy_paste"`
	ClipboardAutosync      bool   `json:"clipboard_autosync"`
	ForwardGameControllers bool   `json:"forward_game_controllers"`
	TouchmapFile           string `json:"touchmap_file"`
	RightClick             int    `json:"right_click"`
	MiddleClick            int    `json:"middle_click"`
	Click4                 int    `json:"click4"`
	Click5                 int    `json:"click5"`
}

// DefaultInputSettings mirrors the scrcpy defaults: shortcuts on left Alt
// or left Super, clipboard autosync on, gamepads consumed by the touchmap
// when one is loaded, right click mapped to BACK and middle click to HOME.
func DefaultInputSettings(deviceID string) InputSettings {
	return InputSettings{
		DeviceID:          deviceID,
		ShortcutMods:      0x04 | 0x10, // lalt | lsuper
		ClipboardAutosync: true,
		RightClick:        2, // BACK
		MiddleClick:       3, // HOME
	}
}

// InitDatabase opens the SQLite database and applies the schema
func InitDatabase() (*sql.DB, error) {
	if err := os.MkdirAll("./data", 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", DatabasePath)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, err
	}

	log.Println("Database initialized successfully")
	return db, nil
}

// Store persists input settings
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// GetInputSettings loads the settings for a device, falling back to the
// defaults when no row exists
func (s *Store) GetInputSettings(deviceID string) (InputSettings, error) {
	settings := DefaultInputSettings(deviceID)
	if s.db == nil {
		return settings, nil
	}

	row := s.db.QueryRow(`SELECT shortcut_mods, forward_all_clicks,
		legacy_paste, clipboard_autosync, forward_game_controllers,
		touchmap_file, right_click, middle_click, click4, click5
		FROM input_settings WHERE device_id = ?`, deviceID)

	err := row.Scan(&settings.ShortcutMods, &settings.ForwardAllClicks,
		&settings.LegacyPaste, &settings.ClipboardAutosync,
		&settings.ForwardGameControllers, &settings.TouchmapFile,
		&settings.RightClick, &settings.MiddleClick,
		&settings.Click4, &settings.Click5)
	if err == sql.ErrNoRows {
		return DefaultInputSettings(deviceID), nil
	}
	if err != nil {
		return DefaultInputSettings(deviceID), err
	}
	return settings, nil
}

// SaveInputSettings upserts the settings row for a device
func (s *Store) SaveInputSettings(settings InputSettings) error {
	if s.db == nil {
		return nil
	}

	_, err := s.db.Exec(`INSERT INTO input_settings (device_id,
		shortcut_mods, forward_all_clicks, legacy_paste,
		clipboard_autosync, forward_game_controllers, touchmap_file,
		right_click, middle_click, click4, click5)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(device_id) DO UPDATE SET
		shortcut_mods = excluded.shortcut_mods,
		forward_all_clicks = excluded.forward_all_clicks,
		legacy_paste = excluded.legacy_paste,
		clipboard_autosync = excluded.clipboard_autosync,
		forward_game_controllers = excluded.forward_game_controllers,
		touchmap_file = excluded.touchmap_file,
		right_click = excluded.right_click,
		middle_click = excluded.middle_click,
		click4 = excluded.click4,
		click5 = excluded.click5`,
		settings.DeviceID, settings.ShortcutMods, settings.ForwardAllClicks,
		settings.LegacyPaste, settings.ClipboardAutosync,
		settings.ForwardGameControllers, settings.TouchmapFile,
		settings.RightClick, settings.MiddleClick,
		settings.Click4, settings.Click5)
	return err
}
