package hcl

import (
	"github.com/hashicorp/hcl/v2"
)

// fileRoot is a struct used to decode all possible top-level blocks from any
// file. Anything else in a file is a decode error.
type fileRoot struct {
	Types       []*typeBlock    `hcl:"type,block"`
	Nodes       []*nodeBlock    `hcl:"node,block"`
	Connections []*connectBlock `hcl:"connect,block"`
}

type typeBlock struct {
	Name       string   `hcl:"name,label"`
	Implements []string `hcl:"implements,optional"`
}

type nodeBlock struct {
	ID        string            `hcl:"id,label"`
	Type      string            `hcl:"type"`
	Label     string            `hcl:"label,optional"`
	Reentrant bool              `hcl:"reentrant,optional"`
	Reroute   bool              `hcl:"reroute,optional"`
	FlowIn    []*flowPortBlock  `hcl:"flow_in,block"`
	Inputs    []*valuePortBlock `hcl:"input,block"`
	FlowOut   []*flowPortBlock  `hcl:"flow_out,block"`
	Outputs   []*valuePortBlock `hcl:"output,block"`
	DeclRange hcl.Range         `hcl:",def_range"`
}

type flowPortBlock struct {
	ID    string `hcl:"id,label"`
	Label string `hcl:"label,optional"`
}

type valuePortBlock struct {
	ID      string         `hcl:"id,label"`
	Type    hcl.Expression `hcl:"type,optional"`
	Accepts hcl.Expression `hcl:"accepts,optional"`
	Default hcl.Expression `hcl:"default,optional"`
	Label   string         `hcl:"label,optional"`
}

type connectBlock struct {
	From      string    `hcl:"from"`
	To        string    `hcl:"to"`
	Proxy     *bool     `hcl:"proxy,optional"`
	DeclRange hcl.Range `hcl:",def_range"`
}
