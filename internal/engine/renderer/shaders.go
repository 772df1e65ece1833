package renderer

const meshVertexShader = `#version 410 core
layout (location = 0) in vec3 aPosition;
layout (location = 1) in vec3 aNormal;
layout (location = 2) in vec2 aTexCoord;

uniform mat4 uModel;
uniform mat4 uView;
uniform mat4 uProjection;
uniform mat4 uLightSpace;

out vec3 vNormal;
out vec2 vTexCoord;
out vec3 vWorldPos;
out vec4 vLightSpacePos;

void main() {
    vec4 world = uModel * vec4(aPosition, 1.0);
    vWorldPos = world.xyz;
    vNormal = mat3(transpose(inverse(uModel))) * aNormal;
    vTexCoord = aTexCoord;
    vLightSpacePos = uLightSpace * world;
    gl_Position = uProjection * uView * world;
}
`

const meshFragmentShader = `#version 410 core
#define MAX_LIGHTS 4

in vec3 vNormal;
in vec2 vTexCoord;
in vec3 vWorldPos;
in vec4 vLightSpacePos;

uniform sampler2D uTexture;
uniform bool uUseTexture;
uniform vec3 uColor;
uniform float uOpacity;
uniform float uRoughness;
uniform float uMetalness;
uniform bool uUnlit;

uniform vec3 uEye;
uniform vec3 uAmbient;
uniform int uLightCount;
uniform vec3 uLightDir[MAX_LIGHTS];
uniform vec3 uLightColor[MAX_LIGHTS];

uniform bool uReceiveShadow;
uniform int uShadowLight;
uniform sampler2DShadow uShadowMap;

out vec4 FragColor;

float shadowVisibility(vec3 n, vec3 l) {
    vec3 p = vLightSpacePos.xyz / vLightSpacePos.w * 0.5 + 0.5;
    if (p.z > 1.0) {
        return 1.0;
    }
    float bias = max(0.002 * (1.0 - dot(n, l)), 0.0005);
    vec2 texel = 1.0 / vec2(textureSize(uShadowMap, 0));
    float sum = 0.0;
    for (int x = -1; x <= 1; x++) {
        for (int y = -1; y <= 1; y++) {
            sum += texture(uShadowMap, vec3(p.xy + vec2(x, y) * texel, p.z - bias));
        }
    }
    return sum / 9.0;
}

void main() {
    vec4 base = vec4(uColor, uOpacity);
    if (uUseTexture) {
        base *= texture(uTexture, vTexCoord);
    }
    if (uUnlit) {
        FragColor = base;
        return;
    }

    vec3 n = normalize(vNormal);
    if (!gl_FrontFacing) {
        n = -n;
    }
    vec3 v = normalize(uEye - vWorldPos);

    vec3 diffuseColor = base.rgb * (1.0 - uMetalness);
    vec3 specularColor = mix(vec3(0.04), base.rgb, uMetalness);
    float shininess = mix(256.0, 4.0, uRoughness);

    vec3 color = uAmbient * base.rgb;
    for (int i = 0; i < uLightCount; i++) {
        vec3 l = normalize(uLightDir[i]);
        float diff = max(dot(n, l), 0.0);
        vec3 h = normalize(l + v);
        float spec = pow(max(dot(n, h), 0.0), shininess) * (1.0 - uRoughness);
        float vis = 1.0;
        if (uReceiveShadow && i == uShadowLight) {
            vis = shadowVisibility(n, l);
        }
        color += vis * uLightColor[i] * (diffuseColor * diff + specularColor * spec);
    }
    FragColor = vec4(color, base.a);
}
`

const depthVertexShader = `#version 410 core
layout (location = 0) in vec3 aPosition;

uniform mat4 uModel;
uniform mat4 uLightSpace;

void main() {
    gl_Position = uLightSpace * uModel * vec4(aPosition, 1.0);
}
`

const depthFragmentShader = `#version 410 core
void main() {
}
`
