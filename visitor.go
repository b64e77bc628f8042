// Copyright 2024 The votable-go Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package votable

// Visitor is the pre/post-order traversal interface over a VOTable tree:
// per-tag start/end hooks for container-capable tags, plus leaf hooks for
// tags that never have children worth descending into on their own. The
// pre-order hook runs before children are visited; the post-order hook
// after.
type Visitor interface {
	VisitVOTableStart(vt *VOTable, vid VID) error
	VisitVOTableEnd(vt *VOTable, vid VID) error
	VisitResourceStart(r *Resource, vid VID) error
	VisitResourceEnd(r *Resource, vid VID) error
	VisitTableStart(t *Table, vid VID) error
	VisitTableEnd(t *Table, vid VID) error
	VisitFieldStart(f *Field, vid VID) error
	VisitFieldEnd(f *Field, vid VID) error
	VisitParamStart(p *Param, vid VID) error
	VisitParamEnd(p *Param, vid VID) error
	VisitGroupStart(g *Group, vid VID) error
	VisitGroupEnd(g *Group, vid VID) error
	VisitCooSysStart(c *CooSys, vid VID) error
	VisitCooSysEnd(c *CooSys, vid VID) error
	VisitTimeSys(t *TimeSys, vid VID) error
	VisitData(d *Data, vid VID) error
	VisitDescription(d *Description, vid VID) error
	VisitLink(l *Link, vid VID) error
	VisitInfo(i *Info, vid VID) error
	VisitFieldRef(f *FieldRef, vid VID) error
	VisitParamRef(p *ParamRef, vid VID) error
	VisitValues(v *Values, vid VID) error
}

// NopVisitor implements Visitor with every hook a no-op. Embed it in a
// concrete visitor and override only the hooks that matter.
type NopVisitor struct{}

func (NopVisitor) VisitVOTableStart(*VOTable, VID) error  { return nil }
func (NopVisitor) VisitVOTableEnd(*VOTable, VID) error    { return nil }
func (NopVisitor) VisitResourceStart(*Resource, VID) error { return nil }
func (NopVisitor) VisitResourceEnd(*Resource, VID) error   { return nil }
func (NopVisitor) VisitTableStart(*Table, VID) error      { return nil }
func (NopVisitor) VisitTableEnd(*Table, VID) error        { return nil }
func (NopVisitor) VisitFieldStart(*Field, VID) error      { return nil }
func (NopVisitor) VisitFieldEnd(*Field, VID) error        { return nil }
func (NopVisitor) VisitParamStart(*Param, VID) error      { return nil }
func (NopVisitor) VisitParamEnd(*Param, VID) error        { return nil }
func (NopVisitor) VisitGroupStart(*Group, VID) error      { return nil }
func (NopVisitor) VisitGroupEnd(*Group, VID) error        { return nil }
func (NopVisitor) VisitCooSysStart(*CooSys, VID) error    { return nil }
func (NopVisitor) VisitCooSysEnd(*CooSys, VID) error      { return nil }
func (NopVisitor) VisitTimeSys(*TimeSys, VID) error       { return nil }
func (NopVisitor) VisitData(*Data, VID) error             { return nil }
func (NopVisitor) VisitDescription(*Description, VID) error { return nil }
func (NopVisitor) VisitLink(*Link, VID) error              { return nil }
func (NopVisitor) VisitInfo(*Info, VID) error               { return nil }
func (NopVisitor) VisitFieldRef(*FieldRef, VID) error       { return nil }
func (NopVisitor) VisitParamRef(*ParamRef, VID) error       { return nil }
func (NopVisitor) VisitValues(*Values, VID) error           { return nil }

// Walk performs a full pre/post-order traversal of vt, computing each
// element's VID along the way and invoking v's hooks.
func Walk(vt *VOTable, v Visitor) error {
	b := newVIDBuilder()
	vid, pop := b.push("VOTABLE")
	defer pop()
	if err := v.VisitVOTableStart(vt, vid); err != nil {
		return err
	}
	if vt.Description != nil {
		dv, dpop := b.push("DESCRIPTION")
		if err := v.VisitDescription(vt.Description, dv); err != nil {
			return err
		}
		dpop()
	}
	for _, e := range vt.Elems {
		if err := walkElem(b, e, v); err != nil {
			return err
		}
	}
	for _, r := range vt.Resources {
		if err := walkResource(b, r, v); err != nil {
			return err
		}
	}
	for _, i := range vt.PostInfos {
		iv, ipop := b.push("INFO")
		if err := v.VisitInfo(i, iv); err != nil {
			return err
		}
		ipop()
	}
	return v.VisitVOTableEnd(vt, vid)
}

func walkElem(b *vidBuilder, e VOTableElem, v Visitor) error {
	switch {
	case e.CooSys != nil:
		return walkCooSys(b, e.CooSys, v)
	case e.TimeSys != nil:
		tv, pop := b.push("TIMESYS")
		defer pop()
		return v.VisitTimeSys(e.TimeSys, tv)
	case e.Group != nil:
		return walkGroup(b, e.Group, v)
	case e.Param != nil:
		return walkParam(b, e.Param, v)
	case e.Info != nil:
		iv, pop := b.push("INFO")
		defer pop()
		return v.VisitInfo(e.Info, iv)
	}
	return nil
}

func walkResourceElem(b *vidBuilder, e ResourceElem, v Visitor) error {
	switch {
	case e.CooSys != nil:
		return walkCooSys(b, e.CooSys, v)
	case e.TimeSys != nil:
		tv, pop := b.push("TIMESYS")
		defer pop()
		return v.VisitTimeSys(e.TimeSys, tv)
	case e.Group != nil:
		return walkGroup(b, e.Group, v)
	case e.Param != nil:
		return walkParam(b, e.Param, v)
	case e.Link != nil:
		lv, pop := b.push("LINK")
		defer pop()
		return v.VisitLink(e.Link, lv)
	}
	return nil
}

func walkCooSys(b *vidBuilder, c *CooSys, v Visitor) error {
	vid, pop := b.push("COOSYS")
	defer pop()
	if err := v.VisitCooSysStart(c, vid); err != nil {
		return err
	}
	for _, fr := range c.FieldRefs {
		fv, fpop := b.push("FIELDref")
		if err := v.VisitFieldRef(fr, fv); err != nil {
			return err
		}
		fpop()
	}
	for _, pr := range c.ParamRefs {
		pv, ppop := b.push("PARAMref")
		if err := v.VisitParamRef(pr, pv); err != nil {
			return err
		}
		ppop()
	}
	return v.VisitCooSysEnd(c, vid)
}

func walkGroup(b *vidBuilder, g *Group, v Visitor) error {
	vid, pop := b.push("GROUP")
	defer pop()
	if err := v.VisitGroupStart(g, vid); err != nil {
		return err
	}
	if g.Description != nil {
		dv, dpop := b.push("DESCRIPTION")
		if err := v.VisitDescription(g.Description, dv); err != nil {
			return err
		}
		dpop()
	}
	for _, c := range g.Children {
		switch {
		case c.ParamRef != nil:
			pv, ppop := b.push("PARAMref")
			if err := v.VisitParamRef(c.ParamRef, pv); err != nil {
				return err
			}
			ppop()
		case c.Param != nil:
			if err := walkParam(b, c.Param, v); err != nil {
				return err
			}
		case c.Group != nil:
			if err := walkGroup(b, c.Group, v); err != nil {
				return err
			}
		case c.FieldRef != nil:
			fv, fpop := b.push("FIELDref")
			if err := v.VisitFieldRef(c.FieldRef, fv); err != nil {
				return err
			}
			fpop()
		}
	}
	return v.VisitGroupEnd(g, vid)
}

func walkParam(b *vidBuilder, p *Param, v Visitor) error {
	vid, pop := b.push("PARAM")
	defer pop()
	if err := v.VisitParamStart(p, vid); err != nil {
		return err
	}
	if p.Description != nil {
		dv, dpop := b.push("DESCRIPTION")
		if err := v.VisitDescription(p.Description, dv); err != nil {
			return err
		}
		dpop()
	}
	if p.Values != nil {
		vv, vpop := b.push("VALUES")
		if err := v.VisitValues(p.Values, vv); err != nil {
			return err
		}
		vpop()
	}
	for _, l := range p.Links {
		lv, lpop := b.push("LINK")
		if err := v.VisitLink(l, lv); err != nil {
			return err
		}
		lpop()
	}
	return v.VisitParamEnd(p, vid)
}

func walkField(b *vidBuilder, f *Field, v Visitor) error {
	vid, pop := b.push("FIELD")
	defer pop()
	if err := v.VisitFieldStart(f, vid); err != nil {
		return err
	}
	if f.Description != nil {
		dv, dpop := b.push("DESCRIPTION")
		if err := v.VisitDescription(f.Description, dv); err != nil {
			return err
		}
		dpop()
	}
	if f.Values != nil {
		vv, vpop := b.push("VALUES")
		if err := v.VisitValues(f.Values, vv); err != nil {
			return err
		}
		vpop()
	}
	for _, l := range f.Links {
		lv, lpop := b.push("LINK")
		if err := v.VisitLink(l, lv); err != nil {
			return err
		}
		lpop()
	}
	return v.VisitFieldEnd(f, vid)
}

func walkTable(b *vidBuilder, t *Table, v Visitor) error {
	vid, pop := b.push("TABLE")
	defer pop()
	if err := v.VisitTableStart(t, vid); err != nil {
		return err
	}
	if t.Description != nil {
		dv, dpop := b.push("DESCRIPTION")
		if err := v.VisitDescription(t.Description, dv); err != nil {
			return err
		}
		dpop()
	}
	for _, c := range t.Columns {
		switch {
		case c.Field != nil:
			if err := walkField(b, c.Field, v); err != nil {
				return err
			}
		case c.Param != nil:
			if err := walkParam(b, c.Param, v); err != nil {
				return err
			}
		case c.Group != nil:
			if err := walkGroup(b, c.Group, v); err != nil {
				return err
			}
		}
	}
	for _, l := range t.Links {
		lv, lpop := b.push("LINK")
		if err := v.VisitLink(l, lv); err != nil {
			return err
		}
		lpop()
	}
	if t.Data != nil {
		dv, dpop := b.push("DATA")
		if err := v.VisitData(t.Data, dv); err != nil {
			return err
		}
		for _, i := range t.Data.Infos {
			iv, ipop := b.push("INFO")
			if err := v.VisitInfo(i, iv); err != nil {
				return err
			}
			ipop()
		}
		dpop()
	}
	for _, i := range t.Infos {
		iv, ipop := b.push("INFO")
		if err := v.VisitInfo(i, iv); err != nil {
			return err
		}
		ipop()
	}
	return v.VisitTableEnd(t, vid)
}

func walkResource(b *vidBuilder, r *Resource, v Visitor) error {
	vid, pop := b.push("RESOURCE")
	defer pop()
	if err := v.VisitResourceStart(r, vid); err != nil {
		return err
	}
	if r.Description != nil {
		dv, dpop := b.push("DESCRIPTION")
		if err := v.VisitDescription(r.Description, dv); err != nil {
			return err
		}
		dpop()
	}
	for _, i := range r.PreInfos {
		iv, ipop := b.push("INFO")
		if err := v.VisitInfo(i, iv); err != nil {
			return err
		}
		ipop()
	}
	for _, e := range r.Elems {
		if err := walkResourceElem(b, e, v); err != nil {
			return err
		}
	}
	for _, c := range r.Children {
		switch {
		case c.Resource != nil:
			if err := walkResource(b, c.Resource, v); err != nil {
				return err
			}
		case c.Table != nil:
			if err := walkTable(b, c.Table, v); err != nil {
				return err
			}
		}
	}
	for _, i := range r.PostInfos {
		iv, ipop := b.push("INFO")
		if err := v.VisitInfo(i, iv); err != nil {
			return err
		}
		ipop()
	}
	return v.VisitResourceEnd(r, vid)
}
