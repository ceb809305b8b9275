package resources

import (
	"bufio"
	"os"
	"os/exec"
	"path"
	"strings"
	"sync"

	"github.com/npillmayer/deglyph/core"
	"github.com/npillmayer/schuko/gconf"
)

func findFontConfigBinary() (fcpath string, ok bool) {
	fcpath = gconf.GetString("fontconfig")
	if fcpath == "" {
		tracer().Infof("fontconfig not configured: key 'fontconfig' should point to the 'fc-list' binary")
		return "", false
	}
	return fcpath, true
}

// cacheFontConfigList runs fc-list once and stores its output in the user's
// config directory. Subsequent calls reuse the stored list.
func cacheFontConfigList(update bool) (string, bool) {
	appkey := gconf.GetString("app-key")
	tracer().Debugf("config[app-key] = %s", appkey)
	uconfdir, err := os.UserConfigDir()
	if appkey == "" || err != nil {
		tracer().Errorf("user config directory not set")
		return "", false
	}
	fcListFilename := path.Join(uconfdir, appkey, "fontlist.txt")
	if _, err := os.Stat(fcListFilename); err == nil {
		// fontlist already exists
		if !update {
			return fcListFilename, true
		}
	} else { // create config sub-dir for this application
		dir := path.Join(uconfdir, appkey)
		if _, err = os.Stat(dir); os.IsNotExist(err) {
			err = os.MkdirAll(dir, 0755)
			if err != nil {
				err = core.WrapError(err, core.EINVALID,
					"user configuration path cannot be created: %s", dir)
				core.UserError(err)
				return "", false
			}
		}
	}
	fcpath, ok := findFontConfigBinary()
	if !ok {
		return "", false
	}
	if !path.IsAbs(fcpath) {
		err = core.Error(core.EINVALID, "fontconfig binary fc-list must point to absolute path: %s", fcpath)
		core.UserError(err)
		return "", false
	}
	if fi, err := os.Stat(fcpath); err != nil || (fi.Mode().Perm()&0100) == 0 {
		err = core.WrapError(err, core.EINVALID,
			"fontconfig configuration points to an invalid binary: %s", fcpath)
		core.UserError(err)
		return "", false
	}
	fontlistFile, err := os.Create(fcListFilename)
	if err == nil {
		fccmd := exec.Command(fcpath)
		fccmd.Stdout = fontlistFile
		err = fccmd.Run()
	}
	if err != nil {
		err = core.WrapError(err, core.EINVALID,
			"fontconfig output file cannot be created: %s", fcListFilename)
		core.UserError(err)
		return "", false
	}
	return fcListFilename, true
}

type fcEntry struct {
	path   string
	family string
}

func loadFontConfigList() ([]fcEntry, bool) {
	fclist, ok := cacheFontConfigList(false)
	if !ok {
		return nil, false
	}
	fc, err := os.Open(fclist)
	if err != nil {
		err = core.WrapError(err, core.EINVALID,
			"fontconfig font list cannot be opened: %s", fclist)
		core.UserError(err)
		return nil, false
	}
	defer fc.Close()
	var entries []fcEntry
	scanner := bufio.NewScanner(fc)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Split(line, ":")
		if len(fields) < 2 {
			continue
		}
		fontpath := strings.TrimSpace(fields[0])
		fontname := strings.TrimSpace(fields[1])
		fontname = strings.TrimPrefix(fontname, ".")
		entries = append(entries, fcEntry{path: fontpath, family: fontname})
	}
	if err = scanner.Err(); err != nil {
		err = core.WrapError(err, core.EINVALID,
			"encountered a problem during reading of fontconfig font list: %s", fclist)
		core.UserError(err)
		return entries, false
	}
	return entries, true
}

var loadFontConfigListTask sync.Once
var loadedFontConfigListOK bool
var fontConfigEntries []fcEntry

// findFontConfigFont searches for a locally installed font using the
// fontconfig system (https://www.freedesktop.org/wiki/Software/fontconfig/).
// fontconfig has to be configured in the global application configuration by
// setting the absolute path of the 'fc-list' binary.
//
// findFontConfigFont will copy the output of fc-list to the user's config
// directory once. Subsequent calls will use the cached entries to search for
// a font, given a (case-insensitive) family name pattern.
//
// We call the binary instead of using the C library because of possible
// version issues. If fontconfig is not configured, findFontConfigFont will
// silently report a miss.
func findFontConfigFont(pattern string) (fpath string, ok bool) {
	loadFontConfigListTask.Do(func() {
		fontConfigEntries, loadedFontConfigListOK = loadFontConfigList()
		tracer().Infof("loaded fontconfig list with %d entries", len(fontConfigEntries))
	})
	if !loadedFontConfigListOK {
		return "", false
	}
	pattern = strings.ToLower(strings.TrimSpace(pattern))
	for _, e := range fontConfigEntries {
		for _, family := range strings.Split(e.family, ",") {
			if strings.ToLower(strings.TrimSpace(family)) == pattern {
				return e.path, true
			}
		}
	}
	// second pass: substring match
	for _, e := range fontConfigEntries {
		if strings.Contains(strings.ToLower(e.family), pattern) {
			return e.path, true
		}
	}
	return "", false
}
