// Package regdata provides the small catalog of default minecraft:*
// registry entries a server ships during the configuration phase, and
// builds the RegistryData packets that carry them. Each entry's wire
// payload is produced by running its struct through the nbt struct bridge.
package regdata

import (
	"mcproto/mcio"
	"mcproto/nbt"
	"mcproto/packets"
)

// DimensionType is the minecraft:dimension_type registry entry shape.
type DimensionType struct {
	FixedTime                   *int64  `nbt:"fixed_time"`
	AmbientLight                float32 `nbt:"ambient_light"`
	BedWorks                    bool    `nbt:"bed_works"`
	CoordinateScale             float64 `nbt:"coordinate_scale"`
	Effects                     string  `nbt:"effects"`
	HasCeiling                  bool    `nbt:"has_ceiling"`
	HasRaids                    bool    `nbt:"has_raids"`
	HasSkylight                 bool    `nbt:"has_skylight"`
	Height                      int32   `nbt:"height"`
	Infiniburn                  string  `nbt:"infiniburn"`
	LogicalHeight               int32   `nbt:"logical_height"`
	MinY                        int32   `nbt:"min_y"`
	MonsterSpawnBlockLightLimit int32   `nbt:"monster_spawn_block_light_limit"`
	MonsterSpawnLightLevel      int32   `nbt:"monster_spawn_light_level"`
	Natural                     bool    `nbt:"natural"`
	PiglinSafe                  bool    `nbt:"piglin_safe"`
	RespawnAnchorWorks          bool    `nbt:"respawn_anchor_works"`
	Ultrawarm                   bool    `nbt:"ultrawarm"`
}

// DefaultOverworld returns the vanilla minecraft:overworld dimension
// type.
func DefaultOverworld() DimensionType {
	fixedTime := int64(1000)
	return DimensionType{
		FixedTime:       &fixedTime,
		AmbientLight:    0.0,
		BedWorks:        true,
		CoordinateScale: 1.0,
		Effects:         "minecraft:overworld",
		HasCeiling:      false,
		HasRaids:        true,
		HasSkylight:     true,
		Height:          384,
		Infiniburn:      "#minecraft:infiniburn_overworld",
		LogicalHeight:   384,
		MinY:            -64,
		Natural:         true,
		PiglinSafe:      false,
	}
}

// WolfVariant is the minecraft:wolf_variant registry entry shape.
type WolfVariant struct {
	WildTexture  string `nbt:"wild_texture"`
	TameTexture  string `nbt:"tame_texture"`
	AngryTexture string `nbt:"angry_texture"`
	Biomes       string `nbt:"biomes"`
}

// DefaultWolf returns the vanilla forest wolf variant.
func DefaultWolf() WolfVariant {
	return WolfVariant{
		WildTexture:  "minecraft:entity/wolf/wolf_woods",
		TameTexture:  "minecraft:entity/wolf/wolf_woods_tame",
		AngryTexture: "minecraft:entity/wolf/wolf_woods_angry",
		Biomes:       "minecraft:forest",
	}
}

// WolfSoundVariant is the minecraft:wolf_sound_variant registry entry shape.
type WolfSoundVariant struct {
	PantSound    string `nbt:"pant_sound"`
	HurtSound    string `nbt:"hurt_sound"`
	GrowlSound   string `nbt:"growl_sound"`
	WhineSound   string `nbt:"whine_sound"`
	DeathSound   string `nbt:"death_sound"`
	AmbientSound string `nbt:"ambient_sound"`
}

// DefaultWolfSound returns the vanilla wolf sound variant.
func DefaultWolfSound() WolfSoundVariant {
	return WolfSoundVariant{
		PantSound:    "minecraft:entity.wolf.pant",
		HurtSound:    "minecraft:entity.wolf.hurt",
		GrowlSound:   "minecraft:entity.wolf.growl",
		WhineSound:   "minecraft:entity.wolf.whine",
		DeathSound:   "minecraft:entity.wolf.death",
		AmbientSound: "minecraft:entity.wolf.ambient",
	}
}

// PigVariant is the minecraft:pig_variant registry entry shape. Model is
// absent for the default (vanilla "warm" form uses no explicit model id).
type PigVariant struct {
	Model   *string `nbt:"model"`
	AssetID string  `nbt:"asset_id"`
}

// DefaultPig returns the vanilla warm pig variant.
func DefaultPig() PigVariant {
	return PigVariant{AssetID: "minecraft:entity/pig/warm_pig"}
}

// FrogVariant is the minecraft:frog_variant registry entry shape.
type FrogVariant struct {
	AssetID string `nbt:"asset_id"`
}

// DefaultFrog returns the vanilla warm frog variant.
func DefaultFrog() FrogVariant {
	return FrogVariant{AssetID: "minecraft:entity/frog/warm_frog"}
}

// CatVariant is the minecraft:cat_variant registry entry shape.
type CatVariant struct {
	AssetID string `nbt:"asset_id"`
}

// DefaultCat returns the vanilla black cat variant.
func DefaultCat() CatVariant {
	return CatVariant{AssetID: "minecraft:entity/cat/black"}
}

// CowVariant is the minecraft:cow_variant registry entry shape.
type CowVariant struct {
	AssetID string  `nbt:"asset_id"`
	Model   *string `nbt:"model"`
}

// DefaultCow returns the vanilla warm cow variant.
func DefaultCow() CowVariant {
	warm := "warm"
	return CowVariant{AssetID: "minecraft:entity/cow/warm_cow", Model: &warm}
}

// ChickenVariant is the minecraft:chicken_variant registry entry shape.
type ChickenVariant struct {
	AssetID string  `nbt:"asset_id"`
	Model   *string `nbt:"model"`
}

// DefaultChicken returns the vanilla warm chicken variant.
func DefaultChicken() ChickenVariant {
	return ChickenVariant{AssetID: "minecraft:entity/chicken/warm_chicken"}
}

// PaintingVariant is the minecraft:painting_variant registry entry shape:
// an asset id plus a fixed canvas size in blocks.
type PaintingVariant struct {
	AssetID string `nbt:"asset_id"`
	Width   int32  `nbt:"width"`
	Height  int32  `nbt:"height"`
}

// DefaultPainting returns the vanilla 1x1 "kebab" painting.
func DefaultPainting() PaintingVariant {
	return PaintingVariant{AssetID: "minecraft:kebab", Width: 1, Height: 1}
}

// entry pairs a registry id with the struct whose nbt.Marshal output
// becomes its payload.
type entry struct {
	registryType string
	id           string
	value        any
}

func catalog() []entry {
	return []entry{
		{"minecraft:dimension_type", "minecraft:overworld", DefaultOverworld()},
		{"minecraft:wolf_variant", "minecraft:woods", DefaultWolf()},
		{"minecraft:wolf_sound_variant", "minecraft:classic", DefaultWolfSound()},
		{"minecraft:pig_variant", "minecraft:temperate", DefaultPig()},
		{"minecraft:frog_variant", "minecraft:temperate", DefaultFrog()},
		{"minecraft:cat_variant", "minecraft:black", DefaultCat()},
		{"minecraft:cow_variant", "minecraft:temperate", DefaultCow()},
		{"minecraft:chicken_variant", "minecraft:temperate", DefaultChicken()},
		{"minecraft:painting_variant", "minecraft:kebab", DefaultPainting()},
	}
}

// BuildRegistryDataPackets encodes the default catalog as one RegistryData
// packet per distinct registry type, each carrying every default entry for
// that type.
func BuildRegistryDataPackets() ([]packets.RegistryData, error) {
	order := []string{}
	byType := map[string][]packets.RegistryEntry{}
	for _, e := range catalog() {
		compound, err := nbt.Marshal(e.value)
		if err != nil {
			return nil, err
		}
		sink := mcio.NewSink()
		nbt.EncodeNetwork(compound, sink)
		if _, ok := byType[e.registryType]; !ok {
			order = append(order, e.registryType)
		}
		byType[e.registryType] = append(byType[e.registryType], packets.RegistryEntry{
			ID:      e.id,
			Payload: sink.Bytes(),
		})
	}

	result := make([]packets.RegistryData, 0, len(order))
	for _, registryType := range order {
		result = append(result, packets.RegistryData{
			RegistryID: registryType,
			Entries:    byType[registryType],
		})
	}
	return result, nil
}
