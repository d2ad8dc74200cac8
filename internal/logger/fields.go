package logger

import (
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Faultbox/vandals/pkg/geom"
)

type vec3 mgl32.Vec3

func (v vec3) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddFloat32("x", v[0])
	enc.AddFloat32("y", v[1])
	enc.AddFloat32("z", v[2])
	return nil
}

type quat mgl32.Quat

func (q quat) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddFloat32("w", q.W)
	enc.AddFloat32("x", q.V[0])
	enc.AddFloat32("y", q.V[1])
	enc.AddFloat32("z", q.V[2])
	return nil
}

type isometry geom.Isometry

func (iso isometry) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	if err := enc.AddObject("pos", vec3(iso.Translation)); err != nil {
		return err
	}
	return enc.AddObject("rot", quat(iso.Rotation))
}

// Vec3 logs a vector as {x, y, z}.
func Vec3(key string, v mgl32.Vec3) zap.Field {
	return zap.Object(key, vec3(v))
}

// Isometry logs a pose as {pos: {x, y, z}, rot: {w, x, y, z}}.
func Isometry(key string, iso geom.Isometry) zap.Field {
	return zap.Object(key, isometry(iso))
}
