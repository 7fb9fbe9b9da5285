package html

// ImportNode copies n into d. The copy keeps the node type, tag,
// attributes and text, and with deep also the children. Live state
// (values, checkedness, scroll, media position, canvas pixels) is not
// copied. Loaded link stylesheets and decoded image sizes are, and a
// shadow root is copied only when it is clonable.
func (d *Document) ImportNode(n *Node, deep bool) *Node {
	c := &Node{
		Type:     n.Type,
		TagName:  n.TagName,
		Text:     n.Text,
		Children: make([]*Node, 0, len(n.Children)),
		doc:      d,
	}
	if n.Type == DocumentNode {
		c.Type = FragmentNode
		c.TagName = "#document-fragment"
	}
	if n.Attributes != nil {
		c.Attributes = make(map[string]string, len(n.Attributes))
		for k, v := range n.Attributes {
			c.Attributes[k] = v
		}
	}
	if n.live != nil {
		if n.live.sheetText != "" {
			c.state().sheetText = n.live.sheetText
		}
		if n.live.hasNatural {
			s := c.state()
			s.naturalW, s.naturalH, s.hasNatural = n.live.naturalW, n.live.naturalH, true
		}
	}
	if !deep {
		return c
	}
	for _, child := range n.Children {
		cc := d.ImportNode(child, true)
		cc.Parent = c
		c.Children = append(c.Children, cc)
	}
	if sr := n.shadow; sr != nil && sr.Clonable {
		csr, _ := c.AttachShadow(ShadowRootInit{
			Mode:           sr.Mode,
			DelegatesFocus: sr.DelegatesFocus,
			Clonable:       true,
		})
		for _, child := range sr.Root.Children {
			cc := d.ImportNode(child, true)
			cc.Parent = csr.Root
			csr.Root.Children = append(csr.Root.Children, cc)
		}
	}
	return c
}
