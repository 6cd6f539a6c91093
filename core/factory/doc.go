// Package factory provides a small generic registry used to build pluggable
// components (plan sinks, plan log stores) from configuration. A component
// is named by a type string plus a map of raw settings that its factory
// decodes into a typed struct.
//
//	reg := factory.NewRegistry[planlog.LogStore]()
//	reg.Register("jsonl", func(conf map[string]any) (planlog.LogStore, error) {
//	    var c struct{ Path string `json:"path"` }
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return planlog.NewRotatingJSONLStore(c.Path, 10, 3, 28)
//	})
//	logs, err := reg.Create(factory.ModuleConfig{Type: "jsonl", Conf: map[string]any{"path": "plans.jsonl"}})
package factory
