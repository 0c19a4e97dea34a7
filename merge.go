package main

import (
	"time"

	"portfolio/constants"
)

// Each mergeable section of the settings document has a fixed merge policy:
// the profile filters out empty submitted values so a field can never be
// cleared by omission, while theme, layout, admin_theme, and individual
// modules take a plain shallow merge where every submitted key wins.

// filterEmptyOverwrite copies every key of partial whose value is neither
// nil nor an empty string into dst. Keys absent from partial, or submitted
// empty, leave dst untouched.
func filterEmptyOverwrite(dst, partial map[string]any) {
	for key, value := range partial {
		if value == nil || value == "" {
			continue
		}
		dst[key] = value
	}
}

// shallowMerge overwrites dst with every key present in partial. Keys never
// seen before are added; keys absent from partial are preserved.
func shallowMerge(dst, partial map[string]any) {
	for key, value := range partial {
		dst[key] = value
	}
}

// applyProfileUpdate merges a partial profile submission into the settings
// document. When the partial carries an announcementEnabled key, the
// document-level announcement sub-object is rebuilt as a group from the
// announcement* keys (text defaults to empty, type to "info").
func applyProfileUpdate(data Settings, partial map[string]any) {
	profile := sectionMap(data, "profile")
	filterEmptyOverwrite(profile, partial)

	if enabled, ok := partial["announcementEnabled"]; ok {
		data["announcement"] = map[string]any{
			"enabled": enabled,
			"text":    stringField(partial, "announcementText", ""),
			"type":    stringField(partial, "announcementType", "info"),
		}
	}
}

// applyModuleUpdate shallow-merges a partial module submission onto the
// stored module entry and stamps updated_at.
func applyModuleUpdate(module, partial map[string]any) {
	shallowMerge(module, partial)
	module["updated_at"] = time.Now().Format(constants.TIMESTAMP_FORMAT)
}

// sectionMap returns the named sub-object of the settings document,
// creating an empty one if the key is absent or not an object.
func sectionMap(data Settings, key string) map[string]any {
	if m, ok := data[key].(map[string]any); ok {
		return m
	}
	m := map[string]any{}
	data[key] = m
	return m
}
