package main

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"portfolio/constants"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// moduleKind classifies a module id so the delete branches are explicit:
// custom modules carry a record in the modules map, built-ins exist only as
// positions in the order list, and anything else is unknown.
type moduleKind int

const (
	moduleCustom moduleKind = iota
	moduleBuiltIn
	moduleUnknown
)

func classifyModule(id string, modules map[string]any) moduleKind {
	if _, ok := modules[id]; ok {
		return moduleCustom
	}
	for _, builtin := range constants.BUILT_IN_MODULES {
		if id == builtin {
			return moduleBuiltIn
		}
	}
	return moduleUnknown
}

// newModuleID returns the caller's preferred id if given, otherwise a
// generated id marked with the custom prefix.
func newModuleID(preferred string) string {
	if preferred != "" {
		return preferred
	}
	return constants.CUSTOM_MODULE_PREFIX + strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
}

// addToOrder appends id to the order list unless it is already present.
func addToOrder(order []string, id string) []string {
	for _, existing := range order {
		if existing == id {
			return order
		}
	}
	return append(order, id)
}

// removeFromOrder drops every occurrence of id from the order list.
func removeFromOrder(order []string, id string) []string {
	kept := order[:0]
	for _, existing := range order {
		if existing != id {
			kept = append(kept, existing)
		}
	}
	return kept
}

// moduleOrder reads layout.module_order into a string slice, tolerating the
// loosely-typed values a JSON document can carry.
func moduleOrder(layout map[string]any) []string {
	raw, ok := layout["module_order"].([]any)
	if !ok {
		return nil
	}
	order := make([]string, 0, len(raw))
	for _, entry := range raw {
		if id, ok := entry.(string); ok {
			order = append(order, id)
		}
	}
	return order
}

func setModuleOrder(layout map[string]any, order []string) {
	raw := make([]any, len(order))
	for i, id := range order {
		raw[i] = id
	}
	layout["module_order"] = raw
}

// GetModules handles GET /api/modules.
func GetModules(w http.ResponseWriter, r *http.Request) {
	data, err := store.LoadSettings()
	if err != nil {
		respondMessage(w, http.StatusInternalServerError, false, "Failed to load modules: "+err.Error())
		return
	}
	respondJSON(w, http.StatusOK, sectionMap(data, "modules"))
}

// AddModule handles POST /api/modules. The caller may supply its own id;
// otherwise one is generated with the custom prefix.
func AddModule(w http.ResponseWriter, r *http.Request) {
	partial, err := decodeBody(r)
	if err != nil {
		respondMessage(w, http.StatusBadRequest, false, "No data provided")
		return
	}

	var created map[string]any
	err = store.UpdateSettings(func(data Settings) (Settings, error) {
		modules := sectionMap(data, "modules")
		moduleID := newModuleID(stringField(partial, "id", ""))

		created = map[string]any{
			"id":         moduleID,
			"title":      stringField(partial, "title", "New Module"),
			"content":    stringField(partial, "content", ""),
			"type":       stringField(partial, "type", "custom"),
			"link":       stringField(partial, "link", ""),
			"visible":    boolField(partial, "visible", true),
			"order":      anyField(partial, "order", 0),
			"created_at": time.Now().Format(constants.TIMESTAMP_FORMAT),
		}
		modules[moduleID] = created

		layout := sectionMap(data, "layout")
		setModuleOrder(layout, addToOrder(moduleOrder(layout), moduleID))
		return data, nil
	})
	if err != nil {
		respondMessage(w, http.StatusInternalServerError, false, "Failed to add module: "+err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Module added",
		"module":  created,
	})
}

// UpdateModule handles PUT /api/modules/{moduleID}. Only custom modules
// have a record to update.
func UpdateModule(w http.ResponseWriter, r *http.Request) {
	moduleID := chi.URLParam(r, "moduleID")
	partial, err := decodeBody(r)
	if err != nil {
		respondMessage(w, http.StatusBadRequest, false, "No data provided")
		return
	}

	var updated map[string]any
	err = store.UpdateSettings(func(data Settings) (Settings, error) {
		modules := sectionMap(data, "modules")
		module, ok := modules[moduleID].(map[string]any)
		if !ok {
			return nil, ErrNotFound
		}
		applyModuleUpdate(module, partial)
		updated = module
		return data, nil
	})
	if errors.Is(err, ErrNotFound) {
		respondMessage(w, http.StatusNotFound, false, "Module not found")
		return
	}
	if err != nil {
		respondMessage(w, http.StatusInternalServerError, false, "Failed to update module: "+err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Module updated",
		"module":  updated,
	})
}

// DeleteModule handles DELETE /api/modules/{moduleID}. Deleting a custom
// module removes its record and its order entry; deleting a built-in only
// removes the order entry (the section stays re-addable by construction).
func DeleteModule(w http.ResponseWriter, r *http.Request) {
	moduleID := chi.URLParam(r, "moduleID")

	err := store.UpdateSettings(func(data Settings) (Settings, error) {
		modules := sectionMap(data, "modules")
		switch classifyModule(moduleID, modules) {
		case moduleCustom:
			delete(modules, moduleID)
		case moduleBuiltIn:
			// no record to delete, only the order entry below
		case moduleUnknown:
			return nil, ErrNotFound
		}

		layout := sectionMap(data, "layout")
		setModuleOrder(layout, removeFromOrder(moduleOrder(layout), moduleID))
		return data, nil
	})
	if errors.Is(err, ErrNotFound) {
		respondMessage(w, http.StatusNotFound, false, "Module not found")
		return
	}
	if err != nil {
		respondMessage(w, http.StatusInternalServerError, false, "Failed to delete module: "+err.Error())
		return
	}

	respondMessage(w, http.StatusOK, true, "Module deleted")
}

// UpdateModuleOrder handles POST /api/modules/order. The submitted order
// replaces the stored one wholesale; ids are not validated against the set
// of known modules (the admin client is trusted).
func UpdateModuleOrder(w http.ResponseWriter, r *http.Request) {
	body, err := decodeBody(r)
	if err != nil {
		respondMessage(w, http.StatusBadRequest, false, "No data provided")
		return
	}

	order := []string{}
	if raw, ok := body["order"].([]any); ok {
		for _, entry := range raw {
			if id, ok := entry.(string); ok {
				order = append(order, id)
			}
		}
	}

	err = store.UpdateSettings(func(data Settings) (Settings, error) {
		layout := sectionMap(data, "layout")
		setModuleOrder(layout, order)
		return data, nil
	})
	if err != nil {
		respondMessage(w, http.StatusInternalServerError, false, "Failed to update order: "+err.Error())
		return
	}

	respondMessage(w, http.StatusOK, true, "Module order updated")
}
