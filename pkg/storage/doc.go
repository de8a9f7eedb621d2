// Package storage owns the save directory of an acquisition run.
//
// Files are written atomically through a temporary file and a rename, so an
// interrupted write never leaves a truncated image at the final path. The
// same helper backs the in-place rewrite done by normalization.
//
//	manager, err := storage.NewManager("./images")
//	if err != nil {
//	    return err
//	}
//	path, err := manager.Save(name, encoded)
package storage
