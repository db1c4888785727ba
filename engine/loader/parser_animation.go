package loader

import (
	"context"
	"strconv"

	"github.com/Carmen-Shannon/oxy-gltf/engine/gltf"
	"github.com/Carmen-Shannon/oxy-gltf/engine/model"
	"golang.org/x/sync/errgroup"
)

func (p *parser) loadAnimation(ctx context.Context, index int) (*model.AnimationClip, error) {
	def, err := at(p.doc.Animations, "animations", index)
	if err != nil {
		return nil, err
	}

	tracks, err := fanOut(ctx, len(def.Channels), func(ctx context.Context, i int) (*model.KeyframeTrack, error) {
		return p.loadTrack(ctx, index, def, &def.Channels[i])
	})
	if err != nil {
		return nil, err
	}

	clip := &model.AnimationClip{Name: def.Name}
	if clip.Name == "" {
		clip.Name = "animation_" + strconv.Itoa(index)
	}
	for _, t := range tracks {
		if t == nil {
			continue
		}
		clip.Tracks = append(clip.Tracks, t)
		if n := len(t.Times); n > 0 {
			clip.Duration = max(clip.Duration, t.Times[n-1])
		}
	}
	return clip, nil
}

// loadTrack builds the keyframe track of one channel. Channels without a target node or with an
// unknown path yield nil.
func (p *parser) loadTrack(ctx context.Context, animIndex int, def *gltf.Animation, channel *gltf.AnimationChannel) (*model.KeyframeTrack, error) {
	sampler, err := at(def.Samplers, "samplers", channel.Sampler)
	if err != nil {
		return nil, err
	}
	if channel.Target.Node == nil {
		return nil, nil
	}
	switch channel.Target.Path {
	case gltf.AnimationPathTranslation, gltf.AnimationPathRotation, gltf.AnimationPathScale, gltf.AnimationPathWeights:
	default:
		p.Warn("unknown animation target path", "kind", KindAnimation, "index", animIndex, "path", channel.Target.Path)
		return nil, nil
	}

	var (
		node           *model.Node
		input, outputs *model.BufferAttribute
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		node, err = p.node(gctx, *channel.Target.Node)
		return err
	})
	g.Go(func() (err error) {
		input, err = p.Accessor(gctx, sampler.Input)
		return err
	})
	g.Go(func() (err error) {
		outputs, err = p.Accessor(gctx, sampler.Output)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	track := &model.KeyframeTrack{
		Target:        node,
		Path:          channel.Target.Path,
		Interpolation: sampler.InterpolationOrDefault(),
		Times:         toFloat32(input),
		Values:        toFloat32(outputs),
		ItemSize:      outputs.ItemSize,
	}
	return track, nil
}

// toFloat32 returns the attribute values as floats, converting integer storage.
func toFloat32(a *model.BufferAttribute) []float32 {
	if a.Float32 != nil {
		return a.Float32
	}
	out := make([]float32, a.Len())
	for i := range a.Count {
		for c := range a.ItemSize {
			out[i*a.ItemSize+c] = a.Component(i, c)
		}
	}
	return out
}
