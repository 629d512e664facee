// Package scene defines the editor's data model: images and texts placed on
// a canvas, the [Scene] that groups them, and the [Store] that holds the
// live scene.
//
// # Identity
//
// Every element carries a stable string id assigned at creation (UUIDv7
// by default, see [UUIDv7]). All engine operations address elements by id;
// nothing matches elements by source or dimensions.
//
// # Copy semantics
//
// [Scene.Clone] is an explicit structural copy. [MemoryStore] clones on
// every read and write, so a caller can never alias the live scene, and
// history snapshots built from [Store.Snapshot] stay immutable.
//
//	store := scene.NewMemoryStore(scene.Scene{})
//	imgs := store.Images()
//	imgs = append(imgs, scene.ImageElement{ID: "img_1", Width: 200, Height: 200, ScaleFactor: 1})
//	store.SetImages(imgs)
package scene
