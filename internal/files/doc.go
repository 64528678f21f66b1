// Package files locates input workbooks and rendered images and writes output
// files safely.
//
// Discovery lists workbooks and images in a stable name order. The PDF report
// relies on that order, so it never depends on directory iteration order or
// modification times.
//
// Manager resolves paths against the configured directories and writes files
// atomically through a temporary sibling.
//
// Example usage:
//
//	discovery := files.NewDiscovery(paths.WorkingDir)
//	images, err := discovery.FindImages(paths.PlotsDir, ".png")
//
//	manager := files.NewManager(paths)
//	err = manager.WriteAtomic("plots/x.png", func(w io.Writer) error { ... })
package files
