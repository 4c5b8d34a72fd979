package app

import (
	"github.com/vk/nodesync/internal/registry"
	"github.com/vk/nodesync/modules/converters"
)

// coreModules is the definitive list of converter modules compiled into the
// nodesync binary.
var coreModules = []registry.Module{
	&converters.Module{},
}
