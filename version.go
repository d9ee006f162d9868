package cardgate

var versionFields = fieldTable{
	"PlatformName":    "platform_name",
	"PlatformVersion": "platform_version",
	"PluginName":      "plugin_name",
	"PluginVersion":   "plugin_version",
}

// Version carries the integrating platform and plugin identification that
// is merged into every request payload, so the gateway can attribute
// traffic to a specific integration.
type Version struct {
	entity
}

func newVersion() *Version {
	return &Version{entity: newEntity("Version", versionFields)}
}

func (v *Version) SetPlatformName(name string) error {
	return v.Set("PlatformName", name)
}

func (v *Version) SetPlatformVersion(version string) error {
	return v.Set("PlatformVersion", version)
}

func (v *Version) SetPluginName(name string) error {
	return v.Set("PluginName", name)
}

func (v *Version) SetPluginVersion(version string) error {
	return v.Set("PluginVersion", version)
}
