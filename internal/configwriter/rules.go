package configwriter

import (
	"github.com/thoreinstein/mcpm/internal/client"
	"github.com/thoreinstein/mcpm/internal/errors"
)

// insert places value under name according to kind's shape.
func insert(kind client.Kind, doc map[string]any, name string, value map[string]any) error {
	var (
		servers map[string]any
		err     error
	)
	switch kind.Shape() {
	case client.ShapeGlobal:
		servers, err = child(doc, client.ServersKey, true)
	case client.ShapeWrappedOrFlat:
		servers, err = wrappedOrFlat(doc)
	case client.ShapeVSCode:
		servers, err = vscode(doc, kind, true)
	default:
		servers, err = child(doc, kind.ServersKey(), true)
	}
	if err != nil {
		return err
	}
	servers[name] = value
	return nil
}

// remove deletes name according to kind's shape.
func remove(kind client.Kind, doc map[string]any, name string) error {
	found := false
	switch kind.Shape() {
	case client.ShapeGlobal:
		root, err := child(doc, client.ServersKey, false)
		if err != nil {
			return err
		}
		found = drop(root, name)

		projects, _ := doc[client.ProjectsKey].(map[string]any)
		for _, p := range projects {
			project, ok := p.(map[string]any)
			if !ok {
				continue
			}
			if servers, ok := project[client.ServersKey].(map[string]any); ok {
				found = drop(servers, name) || found
			}
		}
	case client.ShapeWrappedOrFlat:
		servers, err := wrappedOrFlat(doc)
		if err != nil {
			return err
		}
		found = drop(servers, name)
	case client.ShapeVSCode:
		servers, err := vscode(doc, kind, false)
		if err != nil {
			return err
		}
		found = drop(servers, name)
	default:
		servers, err := child(doc, kind.ServersKey(), false)
		if err != nil {
			return err
		}
		found = drop(servers, name)
	}

	if !found {
		return errors.Wrapf(errors.ErrNotFound, "server %q", name)
	}
	return nil
}

// drop removes an object-valued member. Scalars that share the name are
// not server entries and stay put.
func drop(servers map[string]any, name string) bool {
	if _, ok := servers[name].(map[string]any); !ok {
		return false
	}
	delete(servers, name)
	return true
}

// child returns doc[key] as an object. A missing member yields nil, or a
// fresh object attached to doc when create is set. A member of any other
// type is malformed.
func child(doc map[string]any, key string, create bool) (map[string]any, error) {
	v, ok := doc[key]
	if !ok {
		if !create {
			return nil, nil
		}
		m := map[string]any{}
		doc[key] = m
		return m, nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, errors.Wrapf(errors.ErrMalformedConfig, "%q is not an object", key)
	}
	return m, nil
}

// wrappedOrFlat picks the nested map when the document already uses one
// and the document itself otherwise.
func wrappedOrFlat(doc map[string]any) (map[string]any, error) {
	if _, ok := doc[client.ServersKey]; ok {
		return child(doc, client.ServersKey, false)
	}
	return doc, nil
}

// vscode targets the key discovery reads from: the native key when
// present, the generic key when only that exists, and a new native key
// otherwise.
func vscode(doc map[string]any, kind client.Kind, create bool) (map[string]any, error) {
	native := kind.ServersKey()
	if _, ok := doc[native]; ok {
		return child(doc, native, false)
	}
	if _, ok := doc[client.ServersKey]; ok {
		return child(doc, client.ServersKey, false)
	}
	return child(doc, native, create)
}
