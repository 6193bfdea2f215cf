//go:build windows

package registryscan

import (
	"golang.org/x/sys/windows/registry"

	"github.com/winpacman/core/internal/logging"
)

const uninstallKeyPath = `SOFTWARE\Microsoft\Windows\CurrentVersion\Uninstall`

var hives = []struct {
	hive Hive
	root registry.Key
	path string
}{
	{HiveLocalMachine, registry.LOCAL_MACHINE, uninstallKeyPath},
	{HiveLocalMachineWow6432, registry.LOCAL_MACHINE, `SOFTWARE\WOW6432Node\Microsoft\Windows\CurrentVersion\Uninstall`},
	{HiveCurrentUser, registry.CURRENT_USER, uninstallKeyPath},
}

// Scan enumerates all three Uninstall-key locations (spec.md §4.2) and
// returns every entry with a non-empty DisplayName. A machine with zero
// registered apps yields an empty, non-error result.
func Scan() ([]Entry, error) {
	log := logging.Component("registryscan")
	var entries []Entry

	for _, h := range hives {
		key, err := registry.OpenKey(h.root, h.path, registry.READ|registry.ENUMERATE_SUB_KEYS)
		if err != nil {
			log.Debug("uninstall key not present", "hive", h.hive, "error", err)
			continue
		}
		names, err := key.ReadSubKeyNames(-1)
		key.Close()
		if err != nil {
			log.Warn("failed to enumerate uninstall subkeys", "hive", h.hive, "error", err)
			continue
		}

		for _, name := range names {
			entry, ok := readEntry(h.root, h.path, h.hive, name)
			if !ok {
				continue
			}
			entries = append(entries, entry)
		}
	}

	return entries, nil
}

func readEntry(root registry.Key, basePath string, hive Hive, subKeyName string) (Entry, bool) {
	key, err := registry.OpenKey(root, basePath+`\`+subKeyName, registry.READ)
	if err != nil {
		return Entry{}, false
	}
	defer key.Close()

	displayName, _, err := key.GetStringValue("DisplayName")
	if err != nil || displayName == "" {
		// Entries without a DisplayName are skipped (spec.md §4.2).
		return Entry{}, false
	}

	getString := func(name string) string {
		v, _, _ := key.GetStringValue(name)
		return v
	}

	return Entry{
		Hive:            hive,
		SubKey:          subKeyName,
		DisplayName:     displayName,
		DisplayVersion:  getString("DisplayVersion"),
		Publisher:       getString("Publisher"),
		InstallLocation: getString("InstallLocation"),
		InstallSource:   getString("InstallSource"),
		InstallDate:     getString("InstallDate"),
		UninstallString: getString("UninstallString"),
		InstallString:   getString("InstallString"),
		InstallPath:     getString("InstallPath"),
	}, true
}
