package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// UserData holds user-specific state remembered between sessions
type UserData struct {
	LastConnection string            `json:"last_connection"`
	LastBuckets    map[string]string `json:"last_buckets"`
	DownloadDir    string            `json:"download_dir,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`

	path string
}

// LoadUserData loads user data from the default location. A missing or
// unreadable file yields fresh defaults.
func LoadUserData() (*UserData, error) {
	userDataPath, err := getUserDataPath()
	if err != nil {
		return createDefaultUserData(""), nil
	}
	return LoadUserDataFrom(userDataPath), nil
}

// LoadUserDataFrom loads user data from path
func LoadUserDataFrom(path string) *UserData {
	data, err := os.ReadFile(path)
	if err != nil {
		return createDefaultUserData(path)
	}

	var userData UserData
	if err := json.Unmarshal(data, &userData); err != nil {
		return createDefaultUserData(path)
	}
	if userData.LastBuckets == nil {
		userData.LastBuckets = map[string]string{}
	}
	userData.path = path
	return &userData
}

// Save writes user data back to the file it was loaded from
func (ud *UserData) Save() error {
	if ud.path == "" {
		path, err := getUserDataPath()
		if err != nil {
			return err
		}
		ud.path = path
	}

	ud.UpdatedAt = time.Now()
	if ud.CreatedAt.IsZero() {
		ud.CreatedAt = ud.UpdatedAt
	}

	data, err := json.MarshalIndent(ud, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(ud.path, data, 0600)
}

// RememberBucket records the bucket last opened on a connection
func (ud *UserData) RememberBucket(connectionID, bucket string) error {
	ud.LastConnection = connectionID
	ud.LastBuckets[connectionID] = bucket
	return ud.Save()
}

// RememberDownloadDir records the last directory chosen for downloads
func (ud *UserData) RememberDownloadDir(dir string) error {
	ud.DownloadDir = dir
	return ud.Save()
}

// LastBucket returns the bucket last opened on connectionID
func (ud *UserData) LastBucket(connectionID string) string {
	return ud.LastBuckets[connectionID]
}

func createDefaultUserData(path string) *UserData {
	now := time.Now()
	return &UserData{
		LastBuckets: map[string]string{},
		CreatedAt:   now,
		UpdatedAt:   now,
		path:        path,
	}
}

// getUserDataPath returns the path to the user.data file
func getUserDataPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	configDir := filepath.Join(homeDir, appDirName)
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return "", err
	}

	return filepath.Join(configDir, "user.data"), nil
}
