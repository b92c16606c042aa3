// Package factory is the generic registry behind pluggable backends such as
// metrics sinks and command log stores. A module is named by a type string
// and configured with a raw settings map decoded through json tags.
//
//	reg := factory.NewRegistry[cmdlog.Store]()
//	_ = reg.Register("jsonl", func(conf map[string]any) (cmdlog.Store, error) {
//	    var c struct{ Path string `json:"path"` }
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return cmdlog.NewJSONLStore(c.Path)
//	})
//	store, err := reg.Create(factory.ModuleConfig{Type: "jsonl", Conf: map[string]any{"path": "commands.jsonl"}})
package factory
