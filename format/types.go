// Package format holds the small value types and enums shared across the
// archive, serialize, typetree and object packages: compression kinds,
// build targets, known class ids and the engine version grammar.
package format

import (
	"fmt"
	"strconv"
	"strings"
)

// CompressionKind identifies the codec used to store an archive storage
// block or the archive's compressed descriptor.
type CompressionKind uint8

const (
	CompressionNone  CompressionKind = 0
	CompressionLZMA  CompressionKind = 1
	CompressionLZ4   CompressionKind = 2
	CompressionLZ4HC CompressionKind = 3
	CompressionLZHAM CompressionKind = 4
)

func (c CompressionKind) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionLZMA:
		return "LZMA"
	case CompressionLZ4:
		return "LZ4"
	case CompressionLZ4HC:
		return "LZ4HC"
	case CompressionLZHAM:
		return "LZHAM"
	default:
		return fmt.Sprintf("CompressionKind(%d)", uint8(c))
	}
}

// BuildTarget identifies the platform a serialized file was authored for.
// Only the identifiers commonly observed in the wild are named; unknown
// values round-trip through String() rather than failing to parse.
type BuildTarget int32

const (
	BuildTargetUnknown         BuildTarget = -1
	BuildTargetNoTarget        BuildTarget = 0
	BuildTargetStandaloneWin   BuildTarget = 5
	BuildTargetIPhone          BuildTarget = 9
	BuildTargetAndroid         BuildTarget = 13
	BuildTargetStandaloneOSX   BuildTarget = 19
	BuildTargetWebGL           BuildTarget = 20
	BuildTargetStandaloneLinux BuildTarget = 25
	BuildTargetStandaloneWin64 BuildTarget = 24
	BuildTargetPS4             BuildTarget = 31
	BuildTargetXboxOne         BuildTarget = 33
	BuildTargetSwitch          BuildTarget = 38
)

func (b BuildTarget) String() string {
	switch b {
	case BuildTargetUnknown:
		return "Unknown"
	case BuildTargetNoTarget:
		return "NoTarget"
	case BuildTargetStandaloneWin:
		return "StandaloneWindows"
	case BuildTargetStandaloneWin64:
		return "StandaloneWindows64"
	case BuildTargetStandaloneOSX:
		return "StandaloneOSX"
	case BuildTargetStandaloneLinux:
		return "StandaloneLinux64"
	case BuildTargetAndroid:
		return "Android"
	case BuildTargetIPhone:
		return "iOS"
	case BuildTargetWebGL:
		return "WebGL"
	case BuildTargetPS4:
		return "PS4"
	case BuildTargetXboxOne:
		return "XboxOne"
	case BuildTargetSwitch:
		return "Switch"
	default:
		return fmt.Sprintf("BuildTarget(%d)", int32(b))
	}
}

// ClassID is Unity's persistent class identifier. Only the ids the asset
// viewer and tests need to recognize by name are enumerated; every other
// id is still a valid ClassID, it simply has no name.
//
// Per-class typed accessors are out of scope (spec Non-goals); ClassID
// exists so the viewer can recognize AssetBundle/ResourceManager objects
// while scanning a stream's object table.
type ClassID int32

const (
	ClassGameObject          ClassID = 1
	ClassTransform           ClassID = 4
	ClassMaterial            ClassID = 21
	ClassMeshRenderer        ClassID = 23
	ClassTexture2D           ClassID = 28
	ClassMeshFilter          ClassID = 33
	ClassMesh                ClassID = 43
	ClassAnimationClip       ClassID = 74
	ClassAudioClip           ClassID = 83
	ClassAvatar              ClassID = 90
	ClassAnimator            ClassID = 95
	ClassMonoBehaviour       ClassID = 114
	ClassMonoScript          ClassID = 115
	ClassSkinnedMeshRenderer ClassID = 137
	ClassAssetBundle         ClassID = 142
	ClassResourceManager     ClassID = 147
)

var classNames = map[ClassID]string{
	ClassGameObject:          "GameObject",
	ClassTransform:           "Transform",
	ClassMaterial:            "Material",
	ClassMeshRenderer:        "MeshRenderer",
	ClassTexture2D:           "Texture2D",
	ClassMeshFilter:          "MeshFilter",
	ClassMesh:                "Mesh",
	ClassAnimationClip:       "AnimationClip",
	ClassAudioClip:           "AudioClip",
	ClassAvatar:              "Avatar",
	ClassAnimator:            "Animator",
	ClassMonoBehaviour:       "MonoBehaviour",
	ClassMonoScript:          "MonoScript",
	ClassSkinnedMeshRenderer: "SkinnedMeshRenderer",
	ClassAssetBundle:         "AssetBundle",
	ClassResourceManager:     "ResourceManager",
}

func (c ClassID) String() string {
	if name, ok := classNames[c]; ok {
		return name
	}

	return fmt.Sprintf("ClassID(%d)", int32(c))
}

// UnityVersion is the parsed form of an engine version string of the
// grammar "<major>.<minor>.<patch><build_type><build_num>", e.g.
// "2019.4.1f1" or "2018.3.0a2".
type UnityVersion struct {
	Numbers   [3]int
	BuildType byte // 0 if absent
	BuildNum  int
}

// ParseUnityVersion parses the engine version string grammar
// "major.minor.patchBUILDTYPEbuild" (e.g. "2021.3.5f1"). Missing trailing
// components default to 0; a missing build type is reported as
// BuildType == 0.
func ParseUnityVersion(s string) UnityVersion {
	var v UnityVersion

	numPart := s
	for i, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			numPart = s[:i]
			rest := s[i:]
			v.BuildType = rest[0]
			if len(rest) > 1 {
				v.BuildNum, _ = strconv.Atoi(rest[1:])
			}

			break
		}
	}

	parts := strings.SplitN(numPart, ".", 3)
	for i := 0; i < len(parts) && i < 3; i++ {
		n, _ := strconv.Atoi(parts[i])
		v.Numbers[i] = n
	}

	return v
}

// Compare returns -1, 0 or 1 as v is less than, equal to, or greater than
// other. Ordering is lexicographic over the numeric vector, then by build
// type byte, then by build number.
func (v UnityVersion) Compare(other UnityVersion) int {
	for i := 0; i < 3; i++ {
		if v.Numbers[i] != other.Numbers[i] {
			if v.Numbers[i] < other.Numbers[i] {
				return -1
			}

			return 1
		}
	}

	if v.BuildType != other.BuildType {
		if v.BuildType < other.BuildType {
			return -1
		}

		return 1
	}

	if v.BuildNum != other.BuildNum {
		if v.BuildNum < other.BuildNum {
			return -1
		}

		return 1
	}

	return 0
}

// Less reports whether v orders before other.
func (v UnityVersion) Less(other UnityVersion) bool {
	return v.Compare(other) < 0
}

func (v UnityVersion) String() string {
	s := fmt.Sprintf("%d.%d.%d", v.Numbers[0], v.Numbers[1], v.Numbers[2])
	if v.BuildType != 0 {
		s += string(v.BuildType) + strconv.Itoa(v.BuildNum)
	}

	return s
}
