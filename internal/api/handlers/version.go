package handlers

import (
	"net/http"
	"runtime"
	"runtime/debug"

	"github.com/gin-gonic/gin"
)

// ServiceName identifies this API in version and info payloads
const ServiceName = "promptgate"

// Version is set via ldflags at build time
var Version = "dev"

// BuildInfo describes the running binary
type BuildInfo struct {
	Service   string `json:"service"`
	Version   string `json:"version"`
	Revision  string `json:"revision,omitempty"`
	GoVersion string `json:"go_version"`
}

// CurrentBuild reports the binary version and, when the toolchain embedded
// it, the VCS revision it was built from.
func CurrentBuild() BuildInfo {
	info := BuildInfo{
		Service:   ServiceName,
		Version:   Version,
		GoVersion: runtime.Version(),
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" {
				info.Revision = s.Value
			}
		}
	}
	return info
}

// GetVersion godoc
// @Summary Get version information
// @Tags system
// @Produce json
// @Success 200 {object} BuildInfo
// @Router /version [get]
func GetVersion(c *gin.Context) {
	c.JSON(http.StatusOK, CurrentBuild())
}
